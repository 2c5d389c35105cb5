package attendance

import "testing"

func TestComputeStats(t *testing.T) {
	rec := func(status string, n int) []Record {
		out := make([]Record, n)
		for i := range out {
			out[i] = Record{Status: status}
		}
		return out
	}
	concat := func(groups ...[]Record) []Record {
		var out []Record
		for _, g := range groups {
			out = append(out, g...)
		}
		return out
	}

	tests := []struct {
		name    string
		records []Record
		want    Stats
	}{
		{name: "no records", records: nil, want: Stats{}},
		{
			name:    "makeup counts as attended",
			records: concat(rec(StatusPresent, 3), rec(StatusMakeup, 1), rec(StatusAbsent, 1)),
			want:    Stats{Total: 5, Present: 3, Makeup: 1, Absent: 1, Rate: 80},
		},
		{
			name:    "late does not count as attended",
			records: concat(rec(StatusPresent, 1), rec(StatusLate, 1)),
			want:    Stats{Total: 2, Present: 1, Late: 1, Rate: 50},
		},
		{
			name:    "rate rounds",
			records: concat(rec(StatusPresent, 2), rec(StatusAbsent, 1)),
			want:    Stats{Total: 3, Present: 2, Absent: 1, Rate: 67},
		},
		{
			name:    "all attended",
			records: concat(rec(StatusPresent, 2), rec(StatusMakeup, 2)),
			want:    Stats{Total: 4, Present: 2, Makeup: 2, Rate: 100},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeStats(tt.records); got != tt.want {
				t.Errorf("ComputeStats() = %+v; want %+v", got, tt.want)
			}
		})
	}
}
