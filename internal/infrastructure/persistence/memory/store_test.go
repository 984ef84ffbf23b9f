package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/openlistings/collateral-workflow/internal/domain/entity"
)

func TestUpdateWhereStatus_MatchesExpected(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_ = store.Create(ctx, &entity.Draft{ID: "D1", Status: "pending"})

	updated, err := store.UpdateWhereStatus(ctx, "D1", "pending", &entity.DraftPatch{Status: "ready"})
	if err != nil {
		t.Fatalf("UpdateWhereStatus() failed: %v", err)
	}
	if updated == nil || updated.Status != "ready" {
		t.Fatalf("updated = %+v, want status ready", updated)
	}

	got, _ := store.GetByID(ctx, "D1")
	if got.Status != "ready" {
		t.Errorf("stored status = %s, want ready", got.Status)
	}
}

func TestUpdateWhereStatus_NoMatchIsNoOp(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_ = store.Create(ctx, &entity.Draft{ID: "D1", Status: "review"})

	updated, err := store.UpdateWhereStatus(ctx, "D1", "pending", &entity.DraftPatch{Status: "ready"})
	if err != nil {
		t.Fatalf("UpdateWhereStatus() failed: %v", err)
	}
	if updated != nil {
		t.Fatal("mismatched status should return nil draft")
	}

	got, _ := store.GetByID(ctx, "D1")
	if got.Status != "review" {
		t.Errorf("draft should be untouched, got status %s", got.Status)
	}
}

func TestUpdateWhereStatus_ConcurrentSingleWinner(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_ = store.Create(ctx, &entity.Draft{ID: "D1", Status: "approval"})

	const racers = 16
	var wg sync.WaitGroup
	wins := make(chan string, racers)

	for i := 0; i < racers; i++ {
		target := "approved"
		if i%2 == 1 {
			target = "review"
		}
		wg.Add(1)
		go func(target string) {
			defer wg.Done()
			updated, err := store.UpdateWhereStatus(ctx, "D1", "approval", &entity.DraftPatch{Status: target})
			if err != nil {
				t.Errorf("UpdateWhereStatus() failed: %v", err)
				return
			}
			if updated != nil {
				wins <- target
			}
		}(target)
	}

	wg.Wait()
	close(wins)

	var winners []string
	for w := range wins {
		winners = append(winners, w)
	}
	if len(winners) != 1 {
		t.Fatalf("%d updates won the race, want exactly 1", len(winners))
	}

	got, _ := store.GetByID(ctx, "D1")
	if got.Status != winners[0] {
		t.Errorf("stored status = %s, want the single winner %s", got.Status, winners[0])
	}
}

func TestGetByID_ReturnsCopy(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_ = store.Create(ctx, &entity.Draft{ID: "D1", Status: "pending", DistributionChannels: []string{"mls"}})

	got, _ := store.GetByID(ctx, "D1")
	got.Status = "mutated"
	got.DistributionChannels[0] = "mutated"

	again, _ := store.GetByID(ctx, "D1")
	if again.Status != "pending" || again.DistributionChannels[0] != "mls" {
		t.Error("GetByID() must return an isolated copy")
	}
}

func TestHistoryAppendOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	for _, to := range []string{"ready", "generating", "review"} {
		if err := store.Append(ctx, &entity.HistoryEntry{DraftID: "D1", ToStatus: to}); err != nil {
			t.Fatalf("Append() failed: %v", err)
		}
	}
	_ = store.Append(ctx, &entity.HistoryEntry{DraftID: "D2", ToStatus: "ready"})

	entries, err := store.GetByDraftID(ctx, "D1")
	if err != nil {
		t.Fatalf("GetByDraftID() failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i, to := range []string{"ready", "generating", "review"} {
		if entries[i].ToStatus != to {
			t.Errorf("entry %d: ToStatus = %s, want %s", i, entries[i].ToStatus, to)
		}
		if entries[i].ID == 0 {
			t.Errorf("entry %d: missing assigned ID", i)
		}
	}
}

func TestList_Pagination(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	for _, id := range []string{"D1", "D2", "D3"} {
		_ = store.Create(ctx, &entity.Draft{ID: id, Status: "pending"})
	}

	page, _ := store.List(ctx, 2, 1)
	if len(page) != 2 || page[0].ID != "D2" || page[1].ID != "D3" {
		t.Errorf("List(2,1) = %v", ids(page))
	}

	empty, _ := store.List(ctx, 10, 5)
	if len(empty) != 0 {
		t.Errorf("List() past the end should be empty, got %v", ids(empty))
	}
}

func ids(drafts []*entity.Draft) []string {
	out := make([]string, len(drafts))
	for i, d := range drafts {
		out[i] = d.ID
	}
	return out
}

func TestListingStore(t *testing.T) {
	store := NewStore()
	listings := store.Listings()
	ctx := context.Background()

	if err := listings.Create(ctx, &entity.ListingContext{ID: "L1", Address: "1 Main St"}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	got, err := listings.GetByID(ctx, "L1")
	if err != nil || got == nil || got.Address != "1 Main St" {
		t.Fatalf("GetByID() = %+v, %v", got, err)
	}

	missing, err := listings.GetByID(ctx, "L2")
	if err != nil || missing != nil {
		t.Error("missing listing should be nil, nil")
	}
}
