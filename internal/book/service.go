package book

import (
	"context"
	"errors"
)

// Service provides book-related business logic: it validates payloads before
// any storage call and normalizes storage failures into ErrNotFound or
// *BackendError.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns every book in insertion order. The slice is never nil.
func (s *Service) List(ctx context.Context) ([]Book, error) {
	books, err := s.repo.List(ctx)
	if err != nil {
		return nil, classify("list", err)
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// Get returns the book with the given ISBN.
func (s *Service) Get(ctx context.Context, isbn string) (Book, error) {
	b, err := s.repo.GetByISBN(ctx, isbn)
	if err != nil {
		return Book{}, classify("get", err)
	}
	return b, nil
}

// Create stores a new book and returns it as stored. A duplicate ISBN is
// reported as a *BackendError.
func (s *Service) Create(ctx context.Context, in CreateInput) (Book, error) {
	if err := validateInput(in); err != nil {
		return Book{}, err
	}
	b, err := s.repo.Create(ctx, in.toBook())
	if err != nil {
		return Book{}, classify("create", err)
	}
	return b, nil
}

// Update replaces every field of the book identified by isbn except the ISBN
// itself. All seven fields must be supplied.
func (s *Service) Update(ctx context.Context, isbn string, in UpdateInput) (Book, error) {
	if err := validateInput(in); err != nil {
		return Book{}, err
	}
	b, err := s.repo.Update(ctx, in.toBook(isbn))
	if err != nil {
		return Book{}, classify("update", err)
	}
	return b, nil
}

// Delete removes the book with the given ISBN.
func (s *Service) Delete(ctx context.Context, isbn string) error {
	if err := s.repo.Delete(ctx, isbn); err != nil {
		return classify("delete", err)
	}
	return nil
}

func classify(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	return newBackendError(op, err)
}
