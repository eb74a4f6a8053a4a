package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/civictriage/internal/model"
)

// MockSubmitter implements Submitter
type MockSubmitter struct {
	ShouldError bool

	mu     sync.Mutex
	nextID int64
}

func (m *MockSubmitter) Submit(ctx context.Context, description, locationHint string) (*model.Complaint, error) {
	time.Sleep(5 * time.Millisecond) // Simulate work
	if m.ShouldError || strings.Contains(description, "fail") {
		return nil, errors.New("submit error")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nextID == 0 {
		m.nextID = model.FirstComplaintID
	}
	c := &model.Complaint{ID: m.nextID, Description: description, Location: locationHint}
	m.nextID++
	return c, nil
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "complaints.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessItems(t *testing.T) {
	processor := NewBatchProcessor(&MockSubmitter{}, 2, 0, 0)

	items := []BatchItem{
		{Line: 1, Description: "Water leak"},
		{Line: 2, Description: "Streetlight out", LocationHint: "Ward 4"},
		{Line: 3, Description: "Pothole"},
	}

	results := processor.ProcessItems(context.Background(), items)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	seen := make(map[int64]bool)
	for i, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for line %d: %v", res.Item.Line, res.Error)
			continue
		}
		// Results come back in input order
		if res.Item.Description != items[i].Description {
			t.Errorf("result %d out of order: %s", i, res.Item.Description)
		}
		if res.Complaint == nil {
			t.Fatal("expected complaint for successful submit")
		}
		if seen[res.Complaint.ID] {
			t.Errorf("duplicate id %d", res.Complaint.ID)
		}
		seen[res.Complaint.ID] = true
	}

	if results[1].Complaint.Location != "Ward 4" {
		t.Errorf("location hint not passed through: %q", results[1].Complaint.Location)
	}
}

func TestBatchProcessor_ProcessItems_Error(t *testing.T) {
	processor := NewBatchProcessor(&MockSubmitter{ShouldError: true}, 2, 0, 0)

	results := processor.ProcessItems(context.Background(), []BatchItem{{Description: "x"}})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Error == nil {
		t.Error("expected error, got nil")
	}
	if results[0].Complaint != nil {
		t.Error("expected nil complaint on error")
	}
}

func TestBatchProcessor_ProcessItems_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockSubmitter{}, 2, 0, 0)

	results := processor.ProcessItems(context.Background(), []BatchItem{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_ManyItems(t *testing.T) {
	processor := NewBatchProcessor(&MockSubmitter{}, 3, 0, 0)

	var items []BatchItem
	for i := 0; i < 60; i++ {
		items = append(items, BatchItem{Line: i + 1, Description: "complaint"})
	}

	var streamed int
	processor.OnResult(func(*SubmitResult) { streamed++ })

	results := processor.ProcessItems(context.Background(), items)
	if len(results) != 60 {
		t.Fatalf("expected 60 results, got %d", len(results))
	}
	if streamed != 60 {
		t.Errorf("expected 60 callbacks, got %d", streamed)
	}
	for i, r := range results {
		if r.Index != i {
			t.Fatalf("result %d has index %d", i, r.Index)
		}
	}
}

func TestBatchProcessor_RateLimited(t *testing.T) {
	// 50 rps with burst 1: five submissions need at least ~80ms
	processor := NewBatchProcessor(&MockSubmitter{}, 5, 50, 1)

	items := make([]BatchItem, 5)
	for i := range items {
		items[i] = BatchItem{Description: "x"}
	}

	start := time.Now()
	results := processor.ProcessItems(context.Background(), items)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	if d := time.Since(start); d < 60*time.Millisecond {
		t.Errorf("expected rate limiting to slow the batch, took %v", d)
	}
}

func TestReadItemsFromFile(t *testing.T) {
	content := "Water leak near the market\n" +
		"# comment\n" +
		"Streetlight out\tWard 4\n" +
		"   \n" +
		"Pothole on the main road   \n" +
		"\tonly a hint\n"

	items, err := ReadItemsFromFile(writeTempFile(t, content))
	if err != nil {
		t.Fatalf("ReadItemsFromFile failed: %v", err)
	}

	expected := []BatchItem{
		{Line: 1, Description: "Water leak near the market"},
		{Line: 3, Description: "Streetlight out", LocationHint: "Ward 4"},
		{Line: 5, Description: "Pothole on the main road"},
	}
	if len(items) != len(expected) {
		t.Fatalf("expected %d items, got %d: %+v", len(expected), len(items), items)
	}

	for i, item := range items {
		if item != expected[i] {
			t.Errorf("item %d: expected %+v, got %+v", i, expected[i], item)
		}
	}
}

func TestReadItemsFromFile_NonExistent(t *testing.T) {
	_, err := ReadItemsFromFile("non_existent_file.txt")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestReadItemsFromFile_Deduplication(t *testing.T) {
	content := "Water leak\nWater leak\nWater leak\tWard 2\n"

	items, err := ReadItemsFromFile(writeTempFile(t, content))
	if err != nil {
		t.Fatalf("ReadItemsFromFile failed: %v", err)
	}

	// Same description with a different hint is a different complaint
	if len(items) != 2 {
		t.Errorf("expected 2 items after deduplication, got %d", len(items))
	}
}

func TestSubmitResult_GetError(t *testing.T) {
	r1 := &SubmitResult{Error: nil}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("submit failed")
	r2 := &SubmitResult{Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	content := "Water leak\nfail this one\n# comment\n\nPothole\n"

	processor := NewBatchProcessor(&MockSubmitter{}, 2, 0, 0)

	results, err := processor.ProcessFile(context.Background(), writeTempFile(t, content))
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[1].Error == nil {
		t.Error("expected the second line to fail")
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(&MockSubmitter{}, 2, 0, 0)

	_, err := processor.ProcessFile(context.Background(), "no_such_file.txt")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockSubmitter{}, 2, 0, 0)

	results, err := processor.ProcessFile(context.Background(), writeTempFile(t, ""))
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results for empty file, got %d", len(results))
	}
}
