package book

// Book represents a catalog record. ISBN is the primary key and never changes
// once the book is created.
type Book struct {
	ISBN      string `json:"isbn" db:"isbn"`
	AmazonURL string `json:"amazon_url" db:"amazon_url"`
	Author    string `json:"author" db:"author"`
	Language  string `json:"language" db:"language"`
	Pages     int32  `json:"pages" db:"pages"`
	Publisher string `json:"publisher" db:"publisher"`
	Title     string `json:"title" db:"title"`
	Year      int32  `json:"year" db:"year"`
}

// UpdateInput holds the seven replaceable fields of a book. Pointer fields
// tell an absent key apart from a zero value. Pages and Year match the int4
// columns, so out of range numbers fail while decoding.
type UpdateInput struct {
	AmazonURL *string `json:"amazon_url" validate:"required"`
	Author    *string `json:"author" validate:"required"`
	Language  *string `json:"language" validate:"required"`
	Pages     *int32  `json:"pages" validate:"required"`
	Publisher *string `json:"publisher" validate:"required"`
	Title     *string `json:"title" validate:"required"`
	Year      *int32  `json:"year" validate:"required"`
}

// CreateInput is a full book payload: the ISBN plus every replaceable field.
type CreateInput struct {
	ISBN *string `json:"isbn" validate:"required,min=1"`
	UpdateInput
}

// toBook must only be called on validated input.
func (in UpdateInput) toBook(isbn string) Book {
	return Book{
		ISBN:      isbn,
		AmazonURL: *in.AmazonURL,
		Author:    *in.Author,
		Language:  *in.Language,
		Pages:     *in.Pages,
		Publisher: *in.Publisher,
		Title:     *in.Title,
		Year:      *in.Year,
	}
}

func (in CreateInput) toBook() Book {
	return in.UpdateInput.toBook(*in.ISBN)
}

// NewCreateInput builds a CreateInput carrying every field of b.
func NewCreateInput(b Book) CreateInput {
	return CreateInput{
		ISBN:        &b.ISBN,
		UpdateInput: NewUpdateInput(b),
	}
}

// NewUpdateInput builds an UpdateInput carrying the replaceable fields of b.
func NewUpdateInput(b Book) UpdateInput {
	return UpdateInput{
		AmazonURL: &b.AmazonURL,
		Author:    &b.Author,
		Language:  &b.Language,
		Pages:     &b.Pages,
		Publisher: &b.Publisher,
		Title:     &b.Title,
		Year:      &b.Year,
	}
}
