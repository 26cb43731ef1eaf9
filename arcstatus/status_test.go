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

package arcstatus_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	arcsts "github.com/nabbar/arcengine/arcstatus"
)

var _ = Describe("Status", func() {
	It("should render and parse every member of the list", func() {
		for _, s := range arcsts.List() {
			Expect(arcsts.Parse(s.String())).To(Equal(s))
		}
	})

	It("should fall back to ok on unknown text", func() {
		Expect(arcsts.Parse("whatever")).To(Equal(arcsts.Ok))
	})

	It("should order severities through Worst", func() {
		Expect(arcsts.Ok.Worst(arcsts.Warn)).To(Equal(arcsts.Warn))
		Expect(arcsts.Warn.Worst(arcsts.Fatal)).To(Equal(arcsts.Fatal))
		Expect(arcsts.Eof.Worst(arcsts.Ok)).To(Equal(arcsts.Ok))
	})

	It("should classify blocking and latching members", func() {
		Expect(arcsts.Fatal.Latches()).To(BeTrue())
		Expect(arcsts.Failed.Latches()).To(BeFalse())
		Expect(arcsts.Eof.IsBlocking()).To(BeTrue())
		Expect(arcsts.Warn.IsBlocking()).To(BeFalse())
	})

	It("should survive a json round-trip", func() {
		b, err := json.Marshal(arcsts.Failed)
		Expect(err).To(BeNil())

		var s arcsts.Status
		Expect(json.Unmarshal(b, &s)).To(Succeed())
		Expect(s).To(Equal(arcsts.Failed))
	})
})
