package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/atento/knowledge/pkg/common"
	"github.com/atento/knowledge/pkg/ingest"
	"github.com/atento/knowledge/pkg/logger"
)

// GuidelineMsg carries a free-text guideline captured outside the HTTP
// API, for example from a supervisor tool, to be ingested asynchronously.
type GuidelineMsg struct {
	TenantID  string `json:"tenant_id"`
	Category  string `json:"category"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	CreatedBy string `json:"created_by,omitempty"`
}

func ProcessGuidelineMessage(
	ctx context.Context,
	pipeline *ingest.Pipeline,
	msgBody string,
) error {
	var data GuidelineMsg
	if err := json.Unmarshal([]byte(msgBody), &data); err != nil {
		return fmt.Errorf("failed to unmarshal guideline message: %w", err)
	}

	category, err := common.ParseCategory(data.Category)
	if err != nil {
		return err
	}

	res, err := pipeline.Ingest(ctx, ingest.Params{
		TenantID:  data.TenantID,
		Category:  category,
		Kind:      common.SourceKindFreeText,
		Title:     data.Title,
		Text:      data.Text,
		CreatedBy: data.CreatedBy,
	})
	if err != nil {
		return err
	}

	logger.Info("[Queue][Guideline] Guideline ingested",
		"tenant", data.TenantID, "source", res.Source.ID, "chunks", res.Chunks)
	return nil
}
