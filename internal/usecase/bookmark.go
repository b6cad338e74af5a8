package usecase

import (
	"context"

	"github.com/vasapolrittideah/twitter-api/internal/model"
	"github.com/vasapolrittideah/twitter-api/internal/repository"
)

// BookmarkUsecase covers bookmarking tweets.
type BookmarkUsecase interface {
	BookmarkTweet(ctx context.Context, userID, tweetID string) (*model.Bookmark, error)
	UnbookmarkTweet(ctx context.Context, userID, tweetID string) error
}

type bookmarkUsecase struct {
	bookmarkRepo repository.BookmarkRepository
}

func NewBookmarkUsecase(bookmarkRepo repository.BookmarkRepository) BookmarkUsecase {
	return &bookmarkUsecase{bookmarkRepo: bookmarkRepo}
}

// BookmarkTweet is idempotent: bookmarking an already bookmarked tweet
// returns the existing document.
func (u *bookmarkUsecase) BookmarkTweet(ctx context.Context, userID, tweetID string) (*model.Bookmark, error) {
	return u.bookmarkRepo.UpsertBookmark(ctx, userID, tweetID)
}

// UnbookmarkTweet is idempotent: removing a bookmark that does not exist is
// not an error.
func (u *bookmarkUsecase) UnbookmarkTweet(ctx context.Context, userID, tweetID string) error {
	_, err := u.bookmarkRepo.DeleteBookmark(ctx, userID, tweetID)
	return err
}
