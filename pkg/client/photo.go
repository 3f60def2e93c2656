package client

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// DefaultPageLimit is the number of photos requested per page when the
// caller does not choose one.
const DefaultPageLimit = 24

var validate = validator.New()

// Photo is one record of the remote photo collection. Values are decoded
// verbatim from the API and never modified afterwards.
type Photo struct {
	ID           int    `json:"id" validate:"required,gt=0"`
	AlbumID      int    `json:"albumId,omitempty"`
	Title        string `json:"title"`
	URL          string `json:"url" validate:"required"`
	ThumbnailURL string `json:"thumbnailUrl" validate:"required"`
}

// Validate checks that the record has the shape of a photo.
func (p Photo) Validate() error {
	return validate.Struct(p)
}

// PageRequest identifies one page of the collection. Page is 1-based.
type PageRequest struct {
	Page  int `validate:"gte=1"`
	Limit int `validate:"gte=1"`
}

// DefaultPageRequest returns the first page with DefaultPageLimit items.
func DefaultPageRequest() PageRequest {
	return PageRequest{Page: 1, Limit: DefaultPageLimit}
}

// Validate rejects a page below 1 or a non-positive limit.
func (r PageRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: page request %d/%d: %v", ErrInvalidArgument, r.Page, r.Limit, err)
	}
	return nil
}

// Next returns the request for the following page.
func (r PageRequest) Next() PageRequest {
	return PageRequest{Page: r.Page + 1, Limit: r.Limit}
}
