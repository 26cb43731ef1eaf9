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

package matcher_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/arcengine/charset"
	libent "github.com/nabbar/arcengine/entry"
	"github.com/nabbar/arcengine/matcher"
)

func entryAt(path string, sec, nsec int64) *libent.Entry {
	e := libent.New(&charset.Cache{})
	e.SetPathname(path)
	e.SetMTime(libent.NewTimeSpec(sec, nsec))
	return e
}

var _ = Describe("Matcher time predicates", func() {
	Context("newer-mtime equality boundary", func() {
		It("should exclude entries at or before the reference", func() {
			m := matcher.New()
			m.NewerMTime(7880, 0)

			Expect(m.ExcludedTime(entryAt("a", 7879, 999999999))).To(BeTrue())
			Expect(m.ExcludedTime(entryAt("a", 7880, 0))).To(BeTrue())
			Expect(m.ExcludedTime(entryAt("a", 7880, 1))).To(BeFalse())
			Expect(m.ExcludedTime(entryAt("a", 7881, 0))).To(BeFalse())
		})
	})

	Context("older-mtime equality boundary", func() {
		It("should exclude entries at or after the reference", func() {
			m := matcher.New()
			m.OlderMTime(7880, 0)

			Expect(m.ExcludedTime(entryAt("a", 7880, 0))).To(BeTrue())
			Expect(m.ExcludedTime(entryAt("a", 7880, 1))).To(BeTrue())
			Expect(m.ExcludedTime(entryAt("a", 7879, 999999999))).To(BeFalse())
		})
	})

	Context("ctime predicates", func() {
		It("should compare against the entry ctime", func() {
			m := matcher.New()
			m.NewerCTime(100, 0)

			e := entryAt("a", 0, 0)
			e.SetCTime(libent.NewTimeSpec(100, 0))
			Expect(m.ExcludedTime(e)).To(BeTrue())

			e.SetCTime(libent.NewTimeSpec(100, 1))
			Expect(m.ExcludedTime(e)).To(BeFalse())
		})
	})

	Context("pathname specific table", func() {
		It("should override the global newer reference per path", func() {
			m := matcher.New()
			m.NewerMTime(1000, 0)
			m.PathNewerMTime("special", 10, 0)

			Expect(m.ExcludedTime(entryAt("normal", 500, 0))).To(BeTrue())
			Expect(m.ExcludedTime(entryAt("special", 500, 0))).To(BeFalse())
			Expect(m.ExcludedTime(entryAt("special", 10, 0))).To(BeTrue())
		})
	})

	Context("unset entry times", func() {
		It("should not exclude entries without the compared time", func() {
			m := matcher.New()
			m.NewerMTime(1000, 0)

			e := libent.New(&charset.Cache{})
			e.SetPathname("no-time")
			Expect(m.ExcludedTime(e)).To(BeFalse())
		})
	})
})

var _ = Describe("Matcher name predicates", func() {
	It("should exclude matching globs", func() {
		m := matcher.New()
		Expect(m.ExcludePattern("**/*.tmp")).To(Succeed())

		Expect(m.ExcludedName("build/cache/x.tmp")).To(BeTrue())
		Expect(m.ExcludedName("src/main.go")).To(BeFalse())
	})

	It("should restrict to include globs when any is set", func() {
		m := matcher.New()
		Expect(m.IncludePattern("src/**")).To(Succeed())

		Expect(m.ExcludedName("src/a/b.go")).To(BeFalse())
		Expect(m.ExcludedName("docs/readme.md")).To(BeTrue())
	})

	It("should let exclusion win over inclusion", func() {
		m := matcher.New()
		Expect(m.IncludePattern("src/**")).To(Succeed())
		Expect(m.ExcludePattern("src/**/*.bak")).To(Succeed())

		Expect(m.ExcludedName("src/a.go")).To(BeFalse())
		Expect(m.ExcludedName("src/a.bak")).To(BeTrue())
	})

	It("should reject a malformed pattern", func() {
		m := matcher.New()
		Expect(m.IncludePattern("a[")).ToNot(Succeed())
	})

	It("should report emptiness", func() {
		m := matcher.New()
		Expect(m.IsEmpty()).To(BeTrue())

		m.NewerMTime(1, 0)
		Expect(m.IsEmpty()).To(BeFalse())
	})
})
