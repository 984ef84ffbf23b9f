package workflow

import (
	"strings"
	"testing"

	"github.com/openlistings/collateral-workflow/internal/domain/entity"
)

func TestGuardListingComplete(t *testing.T) {
	tests := []struct {
		name        string
		listing     *entity.ListingContext
		valid       bool
		wantReasons int
	}{
		{
			name: "complete listing",
			listing: &entity.ListingContext{
				Address:       "1 Main St",
				ListingType:   "office",
				BrokerContact: "B1",
				PhotoCount:    3,
			},
			valid: true,
		},
		{
			name:        "nil context",
			listing:     nil,
			valid:       false,
			wantReasons: 1,
		},
		{
			name: "missing address and photos",
			listing: &entity.ListingContext{
				ListingType:   "office",
				BrokerContact: "B1",
				PhotoCount:    0,
			},
			valid:       false,
			wantReasons: 2,
		},
		{
			name:        "everything missing",
			listing:     &entity.ListingContext{},
			valid:       false,
			wantReasons: 4,
		},
		{
			name: "whitespace-only fields",
			listing: &entity.ListingContext{
				Address:       "   ",
				ListingType:   "office",
				BrokerContact: "\t",
				PhotoCount:    1,
			},
			valid:       false,
			wantReasons: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := guardListingComplete(GuardInput{Draft: &entity.Draft{}, Listing: tt.listing})
			if res.Valid != tt.valid {
				t.Errorf("Valid = %v, want %v (reasons: %v)", res.Valid, tt.valid, res.Reasons)
			}
			if len(res.Reasons) != tt.wantReasons {
				t.Errorf("got %d reasons %v, want %d", len(res.Reasons), res.Reasons, tt.wantReasons)
			}
		})
	}
}

func TestGuardGenerationResult(t *testing.T) {
	tests := []struct {
		name        string
		params      Params
		valid       bool
		wantReasons int
	}{
		{"url and score", Params{"pdf_url": "/f.pdf", "quality_score": 72.0}, true, 0},
		{"size and score", Params{"pdf_size_bytes": 2048, "quality_score": 60.0}, true, 0},
		{"missing both", Params{}, false, 2},
		{"missing score", Params{"pdf_url": "/f.pdf"}, false, 1},
		{"missing pdf", Params{"quality_score": 50.0}, false, 1},
		{"zero size is no reference", Params{"pdf_size_bytes": 0, "quality_score": 50.0}, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := guardGenerationResult(GuardInput{Draft: &entity.Draft{}, Params: tt.params})
			if res.Valid != tt.valid {
				t.Errorf("Valid = %v, want %v (reasons: %v)", res.Valid, tt.valid, res.Reasons)
			}
			if len(res.Reasons) != tt.wantReasons {
				t.Errorf("got %d reasons %v, want %d", len(res.Reasons), res.Reasons, tt.wantReasons)
			}
		})
	}
}

func TestGuardGenerationResult_ListsBothReasons(t *testing.T) {
	res := guardGenerationResult(GuardInput{Draft: &entity.Draft{}, Params: Params{}})
	joined := strings.Join(res.Reasons, " | ")
	if !strings.Contains(joined, "PDF reference") || !strings.Contains(joined, "quality_score") {
		t.Errorf("reasons should name both missing inputs, got %v", res.Reasons)
	}
}

func TestGuardRetryBudget(t *testing.T) {
	tests := []struct {
		count int
		valid bool
	}{
		{0, true},
		{1, true},
		{2, true},
		{3, false},
		{4, false},
	}

	for _, tt := range tests {
		res := guardRetryBudget(GuardInput{Draft: &entity.Draft{RevisionCount: tt.count}})
		if res.Valid != tt.valid {
			t.Errorf("count %d: Valid = %v, want %v", tt.count, res.Valid, tt.valid)
		}
		if !tt.valid && !strings.Contains(res.Reasons[0], "retry limit") {
			t.Errorf("count %d: reason should cite the retry limit, got %v", tt.count, res.Reasons)
		}
	}
}

func TestGuardQualityScore(t *testing.T) {
	tests := []struct {
		score float64
		valid bool
	}{
		{72, true},
		{50, true},
		{49.9, false},
		{0, false},
	}

	for _, tt := range tests {
		res := guardQualityScore(GuardInput{Draft: &entity.Draft{QualityScore: tt.score}})
		if res.Valid != tt.valid {
			t.Errorf("score %.1f: Valid = %v, want %v", tt.score, res.Valid, tt.valid)
		}
	}
}

func TestGuardBrokerComments(t *testing.T) {
	tests := []struct {
		name     string
		comments interface{}
		valid    bool
	}{
		{"real comments", "fix the headline", true},
		{"empty", "", false},
		{"whitespace only", "   \t\n", false},
		{"absent", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := Params{}
			if tt.comments != nil {
				params["comments"] = tt.comments
			}
			res := guardBrokerComments(GuardInput{Draft: &entity.Draft{}, Params: params})
			if res.Valid != tt.valid {
				t.Errorf("Valid = %v, want %v", res.Valid, tt.valid)
			}
		})
	}
}

func TestGuardPDFPresent(t *testing.T) {
	tests := []struct {
		name  string
		draft *entity.Draft
		valid bool
	}{
		{"url set", &entity.Draft{PDFURL: "/f.pdf"}, true},
		{"size set", &entity.Draft{PDFSizeBytes: 1024}, true},
		{"neither", &entity.Draft{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := guardPDFPresent(GuardInput{Draft: tt.draft})
			if res.Valid != tt.valid {
				t.Errorf("Valid = %v, want %v", res.Valid, tt.valid)
			}
		})
	}
}
