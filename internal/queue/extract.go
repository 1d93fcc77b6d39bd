package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/atento/knowledge/pkg/ai"
	"github.com/atento/knowledge/pkg/common"
	"github.com/atento/knowledge/pkg/graph"
	"github.com/atento/knowledge/pkg/logger"
	"github.com/atento/knowledge/pkg/store"
)

// ExtractJobMsg asks the worker to run graph extraction over a tenant's
// chunks. SourceID empty means the whole category.
type ExtractJobMsg struct {
	TenantID    string `json:"tenant_id"`
	Category    string `json:"category"`
	SourceID    string `json:"source_id,omitempty"`
	RequestedBy string `json:"requested_by,omitempty"`
}

func ProcessExtractMessage(
	ctx context.Context,
	st store.KnowledgeStorage,
	proposer ai.GraphProposer,
	msgBody string,
) error {
	var data ExtractJobMsg
	if err := json.Unmarshal([]byte(msgBody), &data); err != nil {
		return fmt.Errorf("failed to unmarshal extract message: %w", err)
	}

	category, err := common.ParseCategory(data.Category)
	if err != nil {
		return err
	}

	logger.Info("[Queue][Extract] Starting extraction",
		"tenant", data.TenantID, "category", category, "source", data.SourceID)

	stats, err := graph.NewExtractor(st, proposer).Extract(ctx, data.TenantID, category, graph.Options{
		SourceID: data.SourceID,
	})
	if err != nil {
		logger.Error("[Queue][Extract] Extraction stopped",
			"tenant", data.TenantID, "chunks", stats.ChunksProcessed, "err", err)
		return err
	}

	logger.Info("[Queue][Extract] Extraction finished",
		"tenant", data.TenantID,
		"chunks", stats.ChunksProcessed,
		"nodes", stats.NodesCreated,
		"edges", stats.EdgesCreated)
	return nil
}
