package storage

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/concilia-dev/concilia/internal/common"
	"github.com/concilia-dev/concilia/internal/model"
)

func testTemplate(name, pattern string) *model.ImportTemplate {
	return &model.ImportTemplate{
		Name:          name,
		Pattern:       pattern,
		Category:      "despesas",
		MinConfidence: 0.7,
		Active:        true,
	}
}

func TestSQLiteStorage_CreateTemplate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tmpl := testTemplate("Tarifa bancária", "tarifa")
	if err := store.CreateTemplate(ctx, tmpl); err != nil {
		t.Fatalf("CreateTemplate() error = %v", err)
	}
	if tmpl.ID == 0 {
		t.Error("Expected generated ID to be set")
	}

	got, err := store.GetTemplate(ctx, tmpl.ID)
	if err != nil {
		t.Fatalf("GetTemplate() error = %v", err)
	}
	if got.Name != tmpl.Name {
		t.Errorf("Expected name %q, got %q", tmpl.Name, got.Name)
	}
	if got.MinConfidence != 0.7 {
		t.Errorf("Expected min confidence 0.7, got %.2f", got.MinConfidence)
	}

	if err := store.CreateTemplate(ctx, &model.ImportTemplate{}); err == nil {
		t.Error("Expected error for invalid template")
	}
	if err := store.CreateTemplate(ctx, nil); err == nil {
		t.Error("Expected error for nil template")
	}
}

func TestSQLiteStorage_GetActiveTemplates(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	active := testTemplate("PIX recebido", "pix recebido")
	inactive := testTemplate("Antigo", "obsoleto")
	inactive.Active = false

	if err := store.CreateTemplate(ctx, active); err != nil {
		t.Fatalf("CreateTemplate() error = %v", err)
	}
	if err := store.CreateTemplate(ctx, inactive); err != nil {
		t.Fatalf("CreateTemplate() error = %v", err)
	}

	got, err := store.GetActiveTemplates(ctx)
	if err != nil {
		t.Fatalf("GetActiveTemplates() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 active template, got %d", len(got))
	}
	if got[0].ID != active.ID {
		t.Errorf("Expected active template %d, got %d", active.ID, got[0].ID)
	}

	all, err := store.GetAllTemplates(ctx)
	if err != nil {
		t.Fatalf("GetAllTemplates() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 templates, got %d", len(all))
	}
}

func TestSQLiteStorage_UpdateTemplate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tmpl := testTemplate("Aluguel", "aluguel")
	if err := store.CreateTemplate(ctx, tmpl); err != nil {
		t.Fatalf("CreateTemplate() error = %v", err)
	}

	tmpl.Pattern = "aluguel escritorio"
	tmpl.Regex = `aluguel.*escrit`
	tmpl.MinConfidence = 0.8
	if err := store.UpdateTemplate(ctx, tmpl); err != nil {
		t.Fatalf("UpdateTemplate() error = %v", err)
	}

	got, err := store.GetTemplate(ctx, tmpl.ID)
	if err != nil {
		t.Fatalf("GetTemplate() error = %v", err)
	}
	if got.Pattern != "aluguel escritorio" {
		t.Errorf("Expected updated pattern, got %q", got.Pattern)
	}
	if got.Regex != `aluguel.*escrit` {
		t.Errorf("Expected updated regex, got %q", got.Regex)
	}
	if got.MinConfidence != 0.8 {
		t.Errorf("Expected updated min confidence, got %.2f", got.MinConfidence)
	}

	missing := testTemplate("Fantasma", "nada")
	missing.ID = 9999
	if err := store.UpdateTemplate(ctx, missing); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStorage_DeleteTemplate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tmpl := testTemplate("Temporário", "temp")
	if err := store.CreateTemplate(ctx, tmpl); err != nil {
		t.Fatalf("CreateTemplate() error = %v", err)
	}

	if err := store.DeleteTemplate(ctx, tmpl.ID); err != nil {
		t.Fatalf("DeleteTemplate() error = %v", err)
	}

	if _, err := store.GetTemplate(ctx, tmpl.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}

	if err := store.DeleteTemplate(ctx, tmpl.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for second delete, got %v", err)
	}
}

func TestSQLiteStorage_RecordTemplateUse(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tmpl := testTemplate("Folha de pagamento", "folha pagamento")
	if err := store.CreateTemplate(ctx, tmpl); err != nil {
		t.Fatalf("CreateTemplate() error = %v", err)
	}

	// Three uses: accepted, accepted, rejected.
	outcomes := []bool{true, true, false}
	for _, accepted := range outcomes {
		if err := store.RecordTemplateUse(ctx, tmpl.ID, accepted); err != nil {
			t.Fatalf("RecordTemplateUse() error = %v", err)
		}
	}

	got, err := store.GetTemplate(ctx, tmpl.ID)
	if err != nil {
		t.Fatalf("GetTemplate() error = %v", err)
	}
	if got.UseCount != 3 {
		t.Errorf("Expected use count 3, got %d", got.UseCount)
	}
	want := 2.0 / 3.0
	if math.Abs(got.SuccessRate-want) > 1e-9 {
		t.Errorf("Expected success rate %.4f, got %.4f", want, got.SuccessRate)
	}

	if err := store.RecordTemplateUse(ctx, 9999, true); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
