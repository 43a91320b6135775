package main

import (
	"context"
	"errors"
	"testing"

	"bookstore/internal/book"

	"github.com/golang/mock/gomock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts every sample", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := book.NewMockRepository(ctrl)
		for _, b := range sampleBooks {
			repo.EXPECT().Create(gomock.Any(), b).Return(b, nil)
		}

		n, err := seed(ctx, book.NewService(repo), sampleBooks, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.Equal(t, len(sampleBooks), n)
	})

	t.Run("skips existing isbn", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := book.NewMockRepository(ctrl)
		gomock.InOrder(
			repo.EXPECT().Create(gomock.Any(), sampleBooks[0]).Return(book.Book{}, &pgconn.PgError{Code: "23505"}),
			repo.EXPECT().Create(gomock.Any(), sampleBooks[1]).Return(sampleBooks[1], nil),
		)

		n, err := seed(ctx, book.NewService(repo), sampleBooks, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("stops on backend failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := book.NewMockRepository(ctrl)
		repo.EXPECT().Create(gomock.Any(), sampleBooks[0]).Return(book.Book{}, errors.New("connection refused"))

		_, err := seed(ctx, book.NewService(repo), sampleBooks, zaptest.NewLogger(t))
		assert.ErrorContains(t, err, sampleBooks[0].ISBN)
	})
}
