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

import (
	"os"
	gopath "path"
	"sort"
)

// Visit is the kind of traversal event delivered by one step.
type Visit uint8

const (
	// VisitRegular is the plain visit every entry receives once.
	VisitRegular Visit = iota
	// VisitPostDescent marks entering a directory, before its contents.
	VisitPostDescent
	// VisitPostAscent marks leaving a directory, after its contents.
	VisitPostAscent
	// VisitError reports a directory that could not be listed. The
	// traversal continues past it.
	VisitError
	// VisitDone ends the traversal.
	VisitDone
)

const (
	flagIsDir uint8 = 1 << iota
	flagIsDirLink
	flagNeedsFirstVisit
	flagNeedsDescent
	flagNeedsOpen
	flagNeedsAscent
)

// node is one directory pending traversal. Children are not
// materialized as nodes; only directories the caller descended into
// are on the stack.
type node struct {
	name   string
	path   string
	depth  int
	flags  uint8
	list   []os.DirEntry
	next   int
	opened bool
}

// tree drives the three visit ordering over a directory hierarchy.
// Access paths are computed relative to the directory the source was
// opened against; the working directory of the process is never
// changed, so the restoration guarantee of the handle holds trivially.
type tree struct {
	stack []*node

	// last regular visit, the target of an opt-in descend
	lastPath  string
	lastName  string
	lastDepth int
	lastIsTop bool

	descend bool
}

type step struct {
	visit Visit
	path  string
	name  string
	depth int
}

func newTree(root string) *tree {
	return &tree{
		stack: []*node{{
			name:  gopath.Base(root),
			path:  root,
			flags: flagNeedsFirstVisit | flagIsDirLink | flagNeedsAscent,
		}},
	}
}

func (t *tree) top() *node {
	if len(t.stack) == 0 {
		return nil
	}

	return t.stack[len(t.stack)-1]
}

func (t *tree) pop() {
	if len(t.stack) > 0 {
		t.stack[len(t.stack)-1].list = nil
		t.stack = t.stack[:len(t.stack)-1]
	}
}

// markDescend records that the caller wants to recurse into the entry
// of the last regular visit before the next step.
func (t *tree) markDescend() {
	t.descend = true
}

// applyDescend pushes the pending descent target.
func (t *tree) applyDescend() {
	if !t.descend || t.lastPath == "" {
		t.descend = false
		return
	}

	t.descend = false

	if t.lastIsTop {
		// the root received its regular visit while already stacked
		t.top().flags |= flagNeedsDescent | flagNeedsOpen
		return
	}

	t.stack = append(t.stack, &node{
		name:  t.lastName,
		path:  t.lastPath,
		depth: t.lastDepth,
		flags: flagNeedsDescent | flagNeedsOpen | flagNeedsAscent,
	})
}

// next advances the state machine by one event.
func (t *tree) next() step {
	t.applyDescend()

	for {
		n := t.top()
		if n == nil {
			return step{visit: VisitDone}
		}

		// children of an opened listing come first
		if n.opened && n.next < len(n.list) {
			c := n.list[n.next]
			n.next++

			name := c.Name()
			if name == "." || name == ".." {
				continue
			}

			t.lastPath = gopath.Join(n.path, name)
			t.lastName = name
			t.lastDepth = n.depth + 1
			t.lastIsTop = false

			return step{
				visit: VisitRegular,
				path:  t.lastPath,
				name:  name,
				depth: n.depth + 1,
			}
		}

		switch {
		case n.flags&flagNeedsFirstVisit != 0:
			n.flags &^= flagNeedsFirstVisit

			t.lastPath = n.path
			t.lastName = n.name
			t.lastDepth = n.depth
			t.lastIsTop = true

			return step{
				visit: VisitRegular,
				path:  n.path,
				name:  n.name,
				depth: n.depth,
			}

		case n.flags&flagNeedsDescent != 0:
			n.flags &^= flagNeedsDescent

			return step{
				visit: VisitPostDescent,
				path:  n.path,
				name:  n.name,
				depth: n.depth,
			}

		case n.flags&flagNeedsOpen != 0:
			n.flags &^= flagNeedsOpen

			list, e := os.ReadDir(n.path)
			if e != nil {
				// the subtree is skipped, traversal continues
				p := step{
					visit: VisitError,
					path:  n.path,
					name:  n.name,
					depth: n.depth,
				}
				t.pop()
				return p
			}

			sort.Slice(list, func(i, j int) bool {
				return list[i].Name() < list[j].Name()
			})

			n.list = list
			n.next = 0
			n.opened = true

		case n.flags&flagNeedsAscent != 0:
			n.flags &^= flagNeedsAscent

			p := step{
				visit: VisitPostAscent,
				path:  n.path,
				name:  n.name,
				depth: n.depth,
			}
			t.pop()
			return p

		default:
			t.pop()
		}
	}
}
