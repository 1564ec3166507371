/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package sequence

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func floats(s Sequence) []float64 {
	ret := make([]float64, s.Size())
	for i := range ret {
		ret[i] = s.Float(i)
	}
	return ret
}

func TestSequences(t *testing.T) {
	y := NewSlice[int32](4, 5)
	for _, test := range []struct {
		description string
		seq         Sequence
		grow        func()
		wantKind    Kind
		want        []float64
	}{{
		description: "int16 slice",
		seq:         NewSlice[int16](3, -1, 7),
		wantKind:    Int16,
		want:        []float64{3, -1, 7},
	}, {
		description: "float64 slice",
		seq:         NewSlice(1.5, 2.5),
		wantKind:    Float64,
		want:        []float64{1.5, 2.5},
	}, {
		description: "fixed regular",
		seq:         NewRegular(10, 2.5, 4),
		wantKind:    Float64,
		want:        []float64{10, 12.5, 15, 17.5},
	}, {
		description: "integral regular",
		seq:         NewRegular(0, 3, 3),
		wantKind:    Int64,
		want:        []float64{0, 3, 6},
	}, {
		description: "regular following a growing slice",
		seq:         NewRegularFollowing(100, 1, y),
		grow: func() {
			y.Append(6, 7)
		},
		wantKind: Int64,
		want:     []float64{100, 101, 102, 103},
	}} {
		t.Run(test.description, func(t *testing.T) {
			if test.grow != nil {
				test.grow()
			}
			if got := test.seq.Kind(); got != test.wantKind {
				t.Errorf("Kind() = %s, want %s", got, test.wantKind)
			}
			got := floats(test.seq)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Got values %v, diff (-want +got):\n%s", got, diff)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	for _, test := range []struct {
		description      string
		seq              Bounder
		from, length     int
		wantMin, wantMax float64
	}{{
		description: "float64 slice",
		seq:         NewSlice(3.0, -2.0, 8.0, 1.0),
		from:        1,
		length:      3,
		wantMin:     -2,
		wantMax:     8,
	}, {
		description: "int64 slice",
		seq:         NewSlice[int64](9, 4, 6),
		from:        0,
		length:      2,
		wantMin:     4,
		wantMax:     9,
	}, {
		description: "descending regular",
		seq:         NewRegular(10, -1, 10),
		from:        2,
		length:      3,
		wantMin:     6,
		wantMax:     8,
	}} {
		t.Run(test.description, func(t *testing.T) {
			gotMin, gotMax := test.seq.Bounds(test.from, test.length)
			if gotMin != test.wantMin || gotMax != test.wantMax {
				t.Errorf("Bounds() = (%v, %v), want (%v, %v)", gotMin, gotMax, test.wantMin, test.wantMax)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	got := []Kind{KindOf[int16](), KindOf[int32](), KindOf[int64](), KindOf[float32](), KindOf[float64]()}
	want := []Kind{Int16, Int32, Int64, Float32, Float64}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("KindOf diff (-want +got):\n%s", diff)
	}
}
