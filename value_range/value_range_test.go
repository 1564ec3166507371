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

package valuerange

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIntersect(t *testing.T) {
	for _, test := range []struct {
		description string
		a, b        Range
		want        Range
		wantOK      bool
	}{{
		description: "overlapping",
		a:           New(0, 10),
		b:           New(5, 20),
		want:        Range{5, 10},
		wantOK:      true,
	}, {
		description: "contained",
		a:           New(0, 10),
		b:           New(2, 3),
		want:        Range{2, 3},
		wantOK:      true,
	}, {
		description: "touching",
		a:           New(0, 10),
		b:           New(10, 12),
		want:        Range{10, 10},
		wantOK:      true,
	}, {
		description: "disjoint",
		a:           New(0, 10),
		b:           New(11, 12),
		wantOK:      false,
	}, {
		description: "reversed endpoints",
		a:           New(10, 0),
		b:           New(8, 2),
		want:        Range{2, 8},
		wantOK:      true,
	}} {
		t.Run(test.description, func(t *testing.T) {
			got, ok := Intersect(test.a, test.b)
			if ok != test.wantOK {
				t.Fatalf("Intersect() ok = %t, want %t", ok, test.wantOK)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Got range %s, diff (-want +got):\n%s", got, diff)
			}
		})
	}
}

func TestJoinAndExtend(t *testing.T) {
	got := Join(New(3, 4), New(-1, 2)).Extend(9)
	want := Range{-1, 9}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Got range %s, diff (-want +got):\n%s", got, diff)
	}
	if !got.Contains(0) || got.Contains(10) {
		t.Errorf("Contains() misbehaves on %s", got)
	}
	if got.Length() != 10 {
		t.Errorf("Length() = %v, want 10", got.Length())
	}
}
