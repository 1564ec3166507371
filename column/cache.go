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

package column

import "github.com/ilhamster/tracechart/sequence"

// Cache memoizes the receiver's values as they are read, except for the
// last nLastChangeable rows, which are always read through.  Reading row i
// memoizes every stable row up to i.
func (c *Column) Cache(nLastChangeable int) {
	if c.cache != nil {
		c.cache.nLastChangeable = nLastChangeable
		return
	}
	c.cache = &cachingSequence{
		src:             c.base,
		nLastChangeable: nLastChangeable,
	}
	c.seq = c.cache
}

// DisableCaching drops any memoized values.  Columns derived from the
// receiver stop reading from its cache too.
func (c *Column) DisableCaching() {
	if c.cache == nil {
		return
	}
	c.cache.disabled = true
	c.cache.values = nil
	c.cache = nil
	c.seq = c.base
}

// Cached returns the number of memoized rows.
func (c *Column) Cached() int {
	if c.cache == nil {
		return 0
	}
	return len(c.cache.values)
}

type cachingSequence struct {
	src             sequence.Sequence
	nLastChangeable int
	values          []float64
	disabled        bool
}

func (cs *cachingSequence) Size() int {
	return cs.src.Size()
}

func (cs *cachingSequence) Float(i int) float64 {
	if i < len(cs.values) {
		return cs.values[i]
	}
	if cs.disabled || i >= cs.src.Size()-cs.nLastChangeable {
		return cs.src.Float(i)
	}
	for j := len(cs.values); j <= i; j++ {
		cs.values = append(cs.values, cs.src.Float(j))
	}
	return cs.values[i]
}

func (cs *cachingSequence) Kind() sequence.Kind {
	return cs.src.Kind()
}
