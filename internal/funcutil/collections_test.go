// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package funcutil

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMap(t *testing.T) {
	got := Map([]int{1, 2, 3}, strconv.Itoa)
	if diff := cmp.Diff([]string{"1", "2", "3"}, got); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}
	if Map(nil, strconv.Itoa) != nil {
		t.Errorf("mapping an empty slice should stay empty")
	}
}

func TestContains(t *testing.T) {
	s := []string{"a", "b"}
	if !Contains(s, "a") || Contains(s, "c") {
		t.Errorf("Contains misbehaves on %v", s)
	}
}

func TestExists(t *testing.T) {
	even := func(x int) bool { return x%2 == 0 }
	if !Exists([]int{1, 2}, even) || Exists([]int{1, 3}, even) {
		t.Errorf("Exists misbehaves")
	}
}

func TestSortedKeys(t *testing.T) {
	m := map[int64]string{3: "c", 1: "a", 2: "b"}
	if diff := cmp.Diff([]int64{1, 2, 3}, SortedKeys(m)); diff != "" {
		t.Errorf("unexpected keys (-want +got):\n%s", diff)
	}
}
