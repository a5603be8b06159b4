// Package profile computes quick per-column summaries of a frame.
package profile

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wdm0006/scrub/pkg/scrub"
)

type NumStats struct {
	Count int     `json:"count"`
	Nulls int     `json:"nulls"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

type BoolStats struct {
	Count int `json:"count"`
	Nulls int `json:"nulls"`
	True  int `json:"true"`
	False int `json:"false"`
}

type StringStats struct {
	Count int            `json:"count"`
	Nulls int            `json:"nulls"`
	Top   map[string]int `json:"top,omitempty"`
}

type ColumnProfile struct {
	Name string       `json:"name"`
	Kind string       `json:"kind"`
	Num  *NumStats    `json:"num,omitempty"`
	Bool *BoolStats   `json:"bool,omitempty"`
	Str  *StringStats `json:"str,omitempty"`
}

type Profile struct {
	Rows    int             `json:"rows"`
	Columns []ColumnProfile `json:"columns"`
}

// Of profiles every column of the frame. topK bounds the value-frequency
// table kept for string and time columns; 0 disables it.
func Of(f *scrub.Frame, topK int) Profile {
	p := Profile{Rows: f.Rows()}
	for _, cs := range f.Schema().Columns {
		col, _ := f.ColumnByName(cs.Name)
		cp := ColumnProfile{Name: cs.Name, Kind: cs.Type.String()}
		switch cs.Type {
		case scrub.KindInt, scrub.KindFloat:
			cp.Num = numStats(col)
		case scrub.KindBool:
			cp.Bool = boolStats(col)
		default:
			cp.Str = stringStats(col, topK)
		}
		p.Columns = append(p.Columns, cp)
	}
	return p
}

func numStats(col scrub.Column) *NumStats {
	st := &NumStats{}
	sum := 0.0
	for i := 0; i < col.Len(); i++ {
		v, ok := col.Value(i)
		if !ok {
			st.Nulls++
			continue
		}
		var fv float64
		switch t := v.(type) {
		case int64:
			fv = float64(t)
		case float64:
			fv = t
		default:
			continue
		}
		if st.Count == 0 || fv < st.Min {
			st.Min = fv
		}
		if st.Count == 0 || fv > st.Max {
			st.Max = fv
		}
		st.Count++
		sum += fv
	}
	if st.Count > 0 {
		st.Mean = sum / float64(st.Count)
	}
	return st
}

func boolStats(col scrub.Column) *BoolStats {
	st := &BoolStats{}
	for i := 0; i < col.Len(); i++ {
		v, ok := col.Value(i)
		if !ok {
			st.Nulls++
			continue
		}
		st.Count++
		if b, _ := v.(bool); b {
			st.True++
		} else {
			st.False++
		}
	}
	return st
}

func stringStats(col scrub.Column, topK int) *StringStats {
	st := &StringStats{}
	freqs := map[string]int{}
	for i := 0; i < col.Len(); i++ {
		v, ok := col.Value(i)
		if !ok {
			st.Nulls++
			continue
		}
		st.Count++
		if topK <= 0 {
			continue
		}
		switch t := v.(type) {
		case string:
			freqs[t]++
		case time.Time:
			freqs[t.Format(time.RFC3339)]++
		}
	}
	if len(freqs) > 0 {
		st.Top = topValues(freqs, topK)
	}
	return st
}

func topValues(freqs map[string]int, k int) map[string]int {
	type kv struct {
		key string
		n   int
	}
	arr := make([]kv, 0, len(freqs))
	for key, n := range freqs {
		arr = append(arr, kv{key, n})
	}
	sort.Slice(arr, func(i, j int) bool {
		if arr[i].n != arr[j].n {
			return arr[i].n > arr[j].n
		}
		return arr[i].key < arr[j].key
	})
	if k > len(arr) {
		k = len(arr)
	}
	out := make(map[string]int, k)
	for i := 0; i < k; i++ {
		out[arr[i].key] = arr[i].n
	}
	return out
}

// Text renders the profile in a compact human-readable form.
func (p Profile) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "rows=%d\n", p.Rows)
	for _, cp := range p.Columns {
		fmt.Fprintf(&b, "- %s (%s): ", cp.Name, cp.Kind)
		switch {
		case cp.Num != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d min=%.6g max=%.6g mean=%.6g\n",
				cp.Num.Count, cp.Num.Nulls, cp.Num.Min, cp.Num.Max, cp.Num.Mean)
		case cp.Bool != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d true=%d false=%d\n",
				cp.Bool.Count, cp.Bool.Nulls, cp.Bool.True, cp.Bool.False)
		default:
			fmt.Fprintf(&b, "count=%d nulls=%d\n", cp.Str.Count, cp.Str.Nulls)
			keys := make([]string, 0, len(cp.Str.Top))
			for k := range cp.Str.Top {
				keys = append(keys, k)
			}
			sort.Slice(keys, func(i, j int) bool {
				if cp.Str.Top[keys[i]] != cp.Str.Top[keys[j]] {
					return cp.Str.Top[keys[i]] > cp.Str.Top[keys[j]]
				}
				return keys[i] < keys[j]
			})
			for _, k := range keys {
				fmt.Fprintf(&b, "    %q: %d\n", k, cp.Str.Top[k])
			}
		}
	}
	return b.String()
}
