package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	mid "github.com/atento/knowledge/internal/server/middleware"
	"github.com/atento/knowledge/pkg/common"
	"github.com/atento/knowledge/pkg/store"
	"github.com/atento/knowledge/pkg/store/memory"
)

func TestGetGraphHandler_ReturnsNodesEdgesAndCounts(t *testing.T) {
	st := memory.NewStorage()
	_, err := st.SaveGraphFragment(context.Background(), "t1", common.CategoryClient, "",
		[]store.NodeInput{
			{Label: "Billing", Type: "topic"},
			{Label: "Refund", Type: "topic"},
		},
		[]store.EdgeInput{
			{Src: "Billing", Dst: "Refund", Relation: "related_to"},
		},
	)
	if err != nil {
		t.Fatalf("seed graph: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	cc := &mid.AppContext{
		Context: e.NewContext(req, rec),
		App:     &mid.App{Store: st},
		User:    &mid.AppUser{ID: "u1", TenantID: "t1"},
	}

	if err := GetGraphHandler(cc); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Nodes  []common.Node `json:"nodes"`
		Edges  []common.Edge `json:"edges"`
		Counts struct {
			Nodes int `json:"nodes"`
			Edges int `json:"edges"`
		} `json:"counts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Nodes) != 2 || len(body.Edges) != 1 {
		t.Fatalf("expected 2 nodes and 1 edge, got %d and %d", len(body.Nodes), len(body.Edges))
	}
	if body.Counts.Nodes != len(body.Nodes) {
		t.Fatalf("counts.nodes %d does not match nodes %d", body.Counts.Nodes, len(body.Nodes))
	}
	if body.Counts.Edges != len(body.Edges) {
		t.Fatalf("counts.edges %d does not match edges %d", body.Counts.Edges, len(body.Edges))
	}
}
