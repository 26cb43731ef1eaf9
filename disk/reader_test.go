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

package disk_test

import (
	"os"
	gopath "path"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	arcsts "github.com/nabbar/arcengine/arcstatus"
	libdsk "github.com/nabbar/arcengine/disk"
	libent "github.com/nabbar/arcengine/entry"
	libmtc "github.com/nabbar/arcengine/matcher"
)

// makeTree builds v/{d1/{f1,d3/{f3}},d2/{f2,d4/}} under a temp root.
func makeTree() string {
	root := GinkgoT().TempDir()
	v := filepath.Join(root, "v")

	Expect(os.MkdirAll(filepath.Join(v, "d1", "d3"), 0o755)).To(Succeed())
	Expect(os.MkdirAll(filepath.Join(v, "d2", "d4"), 0o755)).To(Succeed())
	Expect(os.WriteFile(filepath.Join(v, "d1", "f1"), []byte("file one"), 0o644)).To(Succeed())
	Expect(os.WriteFile(filepath.Join(v, "d1", "d3", "f3"), []byte("file three"), 0o644)).To(Succeed())
	Expect(os.WriteFile(filepath.Join(v, "d2", "f2"), []byte("file two"), 0o644)).To(Succeed())

	return v
}

type visitRec struct {
	rel  string
	kind libdsk.Visit
}

// walkAll drives a traversal descending into every directory.
func walkAll(root string, opt libdsk.Options) []visitRec {
	r, err := libdsk.New(root, opt)
	Expect(err).To(BeNil())

	defer func() {
		_ = r.Close()
	}()

	e := libent.New(nil)

	var out []visitRec

	for {
		v, sts, nerr := r.Next(e)
		if sts == arcsts.Eof {
			return out
		}

		Expect(sts).To(BeElementOf(arcsts.Ok, arcsts.Warn, arcsts.Failed))
		_ = nerr

		rel, _ := filepath.Rel(gopath.Dir(root), e.Pathname())

		out = append(out, visitRec{rel: filepath.ToSlash(rel), kind: v})

		if v == libdsk.VisitRegular && e.FileType() == libent.TypeDirectory {
			r.Descend()
		}
	}
}

var _ = Describe("Disk source traversal", func() {
	Context("three visit ordering", func() {
		It("should wrap every directory's children between its boundary visits", func() {
			v := makeTree()

			recs := walkAll(v, libdsk.Options{AllVisitTypes: true})

			index := func(rel string, kind libdsk.Visit) int {
				for i, r := range recs {
					if r.rel == rel && r.kind == kind {
						return i
					}
				}
				return -1
			}

			dirs := []string{"v", "v/d1", "v/d1/d3", "v/d2", "v/d2/d4"}

			for _, d := range dirs {
				var (
					before = index(d, libdsk.VisitPostDescent)
					after  = index(d, libdsk.VisitPostAscent)
				)

				Expect(before).To(BeNumerically(">=", 0), d)
				Expect(after).To(BeNumerically(">", before), d)

				for _, r := range recs {
					if r.kind != libdsk.VisitRegular {
						continue
					}

					if gopath.Dir(r.rel) == d {
						i := index(r.rel, libdsk.VisitRegular)
						Expect(i).To(BeNumerically(">", before), r.rel)
						Expect(i).To(BeNumerically("<", after), r.rel)
					}
				}
			}
		})

		It("should emit one regular visit per object and two per descended dir", func() {
			v := makeTree()

			recs := walkAll(v, libdsk.Options{AllVisitTypes: true})

			var regular, descents, ascents int
			for _, r := range recs {
				switch r.kind {
				case libdsk.VisitRegular:
					regular++
				case libdsk.VisitPostDescent:
					descents++
				case libdsk.VisitPostAscent:
					ascents++
				}
			}

			// 5 directories and 3 files
			Expect(regular).To(Equal(8))
			Expect(descents).To(Equal(5))
			Expect(ascents).To(Equal(5))
		})

		It("should surface only regular visits by default", func() {
			v := makeTree()

			recs := walkAll(v, libdsk.Options{})

			for _, r := range recs {
				Expect(r.kind).To(Equal(libdsk.VisitRegular))
			}

			Expect(len(recs)).To(Equal(8))
		})

		It("should skip a subtree without a descend call", func() {
			v := makeTree()

			r, err := libdsk.New(v, libdsk.Options{})
			Expect(err).To(BeNil())

			defer func() {
				_ = r.Close()
			}()

			e := libent.New(nil)

			var seen []string

			for {
				_, sts, _ := r.Next(e)
				if sts == arcsts.Eof {
					break
				}

				seen = append(seen, filepath.Base(e.Pathname()))

				// descend into the root and d1 only
				base := filepath.Base(e.Pathname())
				if e.FileType() == libent.TypeDirectory && (base == "v" || base == "d1") {
					r.Descend()
				}
			}

			Expect(seen).To(ContainElements("v", "d1", "d2", "f1", "d3"))
			Expect(seen).ToNot(ContainElements("f2", "d4", "f3"))
		})
	})

	Context("payload reading", func() {
		It("should deliver file bytes matching the entry size", func() {
			v := makeTree()

			r, err := libdsk.New(v, libdsk.Options{})
			Expect(err).To(BeNil())

			defer func() {
				_ = r.Close()
			}()

			e := libent.New(nil)
			found := false

			for {
				_, sts, _ := r.Next(e)
				if sts == arcsts.Eof {
					break
				}

				if e.FileType() == libent.TypeDirectory {
					r.Descend()
					continue
				}

				if filepath.Base(e.Pathname()) != "f3" {
					continue
				}

				found = true

				var body []byte
				for {
					b, _, bsts, berr := r.ReadBlock()
					if bsts == arcsts.Eof {
						Expect(berr).To(BeNil())
						break
					}
					Expect(bsts).To(Equal(arcsts.Ok))
					body = append(body, b...)
				}

				Expect(uint64(len(body))).To(Equal(e.Size()))
				Expect(string(body)).To(Equal("file three"))
			}

			Expect(found).To(BeTrue())
		})
	})

	Context("working directory guarantee", func() {
		It("should leave the process directory untouched after close", func() {
			wd, err := os.Getwd()
			Expect(err).To(BeNil())

			v := makeTree()
			_ = walkAll(v, libdsk.Options{})

			now, err := os.Getwd()
			Expect(err).To(BeNil())
			Expect(now).To(Equal(wd))
		})
	})

	Context("filters", func() {
		It("should consult the matcher at every regular visit", func() {
			v := makeTree()

			m := libmtc.New()
			Expect(m.ExcludePattern("**/f2")).To(Succeed())

			recs := walkAll(v, libdsk.Options{Matcher: m})

			for _, r := range recs {
				Expect(strings.HasSuffix(r.rel, "/f2")).To(BeFalse())
			}
		})

		It("should let the metadata filter exclude yet still descend", func() {
			v := makeTree()

			opt := libdsk.Options{
				Metadata: func(e *libent.Entry) (bool, bool) {
					if filepath.Base(e.Pathname()) == "d1" {
						// excluded from output but still traversable
						return false, true
					}
					return true, false
				},
			}

			r, err := libdsk.New(v, opt)
			Expect(err).To(BeNil())

			defer func() {
				_ = r.Close()
			}()

			e := libent.New(nil)

			var seen []string

			for {
				_, sts, _ := r.Next(e)
				if sts == arcsts.Eof {
					break
				}

				seen = append(seen, filepath.Base(e.Pathname()))

				if e.FileType() == libent.TypeDirectory {
					r.Descend()
				}
			}

			Expect(seen).ToNot(ContainElement("d1"))
			Expect(seen).To(ContainElements("f1", "d3", "f3"))
		})
	})

	Context("symlink modes", func() {
		It("should report links physically and follow them logically", func() {
			v := makeTree()
			link := filepath.Join(v, "lnk")
			Expect(os.Symlink(filepath.Join(v, "d1"), link)).To(Succeed())

			// physical: the link is a link
			r, err := libdsk.New(link, libdsk.Options{Symlink: libdsk.SymlinkPhysical})
			Expect(err).To(BeNil())

			e := libent.New(nil)
			_, sts, _ := r.Next(e)
			Expect(sts).To(Equal(arcsts.Ok))
			Expect(e.FileType()).To(Equal(libent.TypeSymlink))
			Expect(e.Symlink()).ToNot(BeEmpty())
			Expect(r.Close()).To(Succeed())

			// hybrid: the explicit root is followed
			r, err = libdsk.New(link, libdsk.Options{Symlink: libdsk.SymlinkHybrid})
			Expect(err).To(BeNil())

			_, sts, _ = r.Next(e)
			Expect(sts).To(Equal(arcsts.Ok))
			Expect(e.FileType()).To(Equal(libent.TypeDirectory))
			Expect(r.Close()).To(Succeed())
		})
	})

	Context("access time restoration", func() {
		It("should not disturb empty files", func() {
			root := GinkgoT().TempDir()
			p := filepath.Join(root, "empty")
			Expect(os.WriteFile(p, nil, 0o644)).To(Succeed())

			r, err := libdsk.New(root, libdsk.Options{RestoreAtime: true})
			Expect(err).To(BeNil())

			defer func() {
				_ = r.Close()
			}()

			e := libent.New(nil)

			for {
				_, sts, _ := r.Next(e)
				if sts == arcsts.Eof {
					break
				}

				if e.FileType() == libent.TypeDirectory {
					r.Descend()
				}
			}
		})
	})
})
