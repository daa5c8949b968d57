package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/heat-risk-service/internal/domain"
)

// Assessor evaluates a decoded submission.
type Assessor interface {
	Assess(ctx context.Context, sub domain.Submission) (domain.AssessedSubmission, error)
}

// SubmissionTransformer implements Transformer by decoding the message value
// as a Submission and handing it to an Assessor.
type SubmissionTransformer struct {
	assessor Assessor
	logger   *slog.Logger
}

// NewTransformer creates a SubmissionTransformer.
func NewTransformer(assessor Assessor, logger *slog.Logger) *SubmissionTransformer {
	return &SubmissionTransformer{
		assessor: assessor,
		logger:   logger,
	}
}

func (t *SubmissionTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.AssessedSubmission, error) {
	sub, err := ParseSubmission(raw)
	if err != nil {
		return domain.AssessedSubmission{}, err
	}

	out, err := t.assessor.Assess(ctx, sub)
	if err != nil {
		return domain.AssessedSubmission{}, err
	}

	t.logger.Debug("submission assessed",
		"id", out.Submission.ID,
		"camp", out.Submission.Camp,
		"category", out.Result.Category.String(),
		"risk", string(out.Result.Risk),
	)
	return out, nil
}

// ParseSubmission decodes a raw message into a Submission. The message key
// stands in for a missing submission ID and the message timestamp for a
// missing submission time.
func ParseSubmission(raw domain.RawEvent) (domain.Submission, error) {
	var sub domain.Submission
	if err := json.Unmarshal(raw.Value, &sub); err != nil {
		return domain.Submission{}, fmt.Errorf("decode submission at offset %d: %w", raw.Offset, err)
	}
	if sub.ID == "" && len(raw.Key) > 0 {
		sub.ID = string(raw.Key)
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = raw.Timestamp
	}
	return sub, nil
}
