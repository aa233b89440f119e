package usecase

import (
	"fmt"
	"strings"
)

// ListWorkInput is a validated listing request.
type ListWorkInput struct {
	CreatorID  string
	WorkID     string
	Percentage int
}

func ParseListWorkInput(creatorID, workID string, percentage int) (ListWorkInput, error) {
	creatorID = strings.TrimSpace(creatorID)
	workID = strings.TrimSpace(workID)
	if creatorID == "" {
		return ListWorkInput{}, fmt.Errorf("%w: creator id is required", ErrInvalidInput)
	}
	if percentage < 1 || percentage > 100 {
		return ListWorkInput{}, fmt.Errorf("%w: royalty percentage must be between 1 and 100, got %d", ErrInvalidInput, percentage)
	}
	return ListWorkInput{CreatorID: creatorID, WorkID: workID, Percentage: percentage}, nil
}
