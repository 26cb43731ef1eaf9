/*
 *  MIT License
 *
 *  Copyright (c) 2025 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

package disk

// fsRecord describes one mounted filesystem seen during traversal.
// synthetic and remote are tri-state: -1 unknown, 0 no, 1 yes.
type fsRecord struct {
	dev        uint64
	synthetic  int8
	remote     int8
	maxNameLen int
}

// fsSet assigns a sequential id to each unique device encountered and
// shares the record across all entries on that filesystem.
type fsSet struct {
	recs []fsRecord
	byId map[uint64]int
}

func newFsSet() *fsSet {
	return &fsSet{byId: make(map[uint64]int)}
}

// index returns the record index for the device, creating and
// classifying it on first sight.
func (f *fsSet) index(dev uint64, path string) int {
	if i, ok := f.byId[dev]; ok {
		return i
	}

	r := fsRecord{dev: dev, synthetic: -1, remote: -1, maxNameLen: -1}
	inspectFilesystem(path, &r)

	f.recs = append(f.recs, r)
	i := len(f.recs) - 1
	f.byId[dev] = i

	return i
}

func (f *fsSet) record(i int) *fsRecord {
	if i < 0 || i >= len(f.recs) {
		return nil
	}

	return &f.recs[i]
}
