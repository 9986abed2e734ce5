// Fabula
// Copyright (C) 2013-2020+ James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package assign

import (
	"github.com/RoaringBitmap/roaring"
)

// varSet is a set of tracked variable indexes.
type varSet struct {
	bitmap *roaring.Bitmap
}

func newVarSet() *varSet {
	return &varSet{
		bitmap: roaring.NewBitmap(),
	}
}

// Add adds the variable index to the set.
func (obj *varSet) Add(i int) {
	obj.bitmap.Add(uint32(i))
}

// Contains returns true if the variable index exists in the set.
func (obj *varSet) Contains(i int) bool {
	return obj.bitmap.Contains(uint32(i))
}

// Clone returns a copy that can be modified independently.
func (obj *varSet) Clone() *varSet {
	return &varSet{bitmap: obj.bitmap.Clone()}
}

// Equals returns true if both sets hold the same indexes.
func (obj *varSet) Equals(other *varSet) bool {
	if obj == other {
		return true
	}
	return obj.bitmap.Equals(other.bitmap)
}

// ForEach calls f for each index in the set in ascending order.
func (obj *varSet) ForEach(f func(i int)) {
	itr := obj.bitmap.Iterator()
	for itr.HasNext() {
		f(int(itr.Next()))
	}
}

// union returns a new set holding every index of the inputs.
func union(sets ...*varSet) *varSet {
	bms := make([]*roaring.Bitmap, 0, len(sets))
	for _, x := range sets {
		bms = append(bms, x.bitmap)
	}
	if len(bms) == 0 {
		return newVarSet()
	}
	return &varSet{bitmap: roaring.FastOr(bms...)}
}

// intersect returns a new set holding the indexes common to the inputs. A nil
// input is the full set, so it leaves the result unchanged. If every input is
// nil the result is nil too.
func intersect(sets ...*varSet) *varSet {
	var out *roaring.Bitmap
	for _, x := range sets {
		if x == nil {
			continue
		}
		if out == nil {
			out = x.bitmap.Clone()
			continue
		}
		out.And(x.bitmap)
	}
	if out == nil {
		return nil
	}
	return &varSet{bitmap: out}
}
