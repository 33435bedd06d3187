package pagination

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		wantPage   int
		wantSize   int
	}{
		{"defaults", 0, 0, 1, DefaultSize},
		{"negative page", -3, 20, 1, 20},
		{"size above max", 2, 500, 2, MaxSize},
		{"valid", 4, 25, 4, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Normalize(tt.page, tt.size)
			if p.Page != tt.wantPage || p.Size != tt.wantSize {
				t.Fatalf("Normalize(%d, %d) = %+v, want page %d size %d",
					tt.page, tt.size, p, tt.wantPage, tt.wantSize)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	p := Normalize(3, 10)
	if got := p.Offset(); got != 20 {
		t.Fatalf("Offset() = %d, want 20", got)
	}
	if got := p.Limit(); got != 10 {
		t.Fatalf("Limit() = %d, want 10", got)
	}
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		total     int
		wantPages int
	}{
		{"exact multiple", 10, 30, 3},
		{"partial last page", 10, 31, 4},
		{"single row", 10, 1, 1},
		{"zero total", 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pg := NewPage(Normalize(1, tt.size), tt.total)
			if pg.TotalPage != tt.wantPages {
				t.Fatalf("TotalPage = %d, want %d", pg.TotalPage, tt.wantPages)
			}
			if pg.TotalData != tt.total {
				t.Fatalf("TotalData = %d, want %d", pg.TotalData, tt.total)
			}
		})
	}
}
