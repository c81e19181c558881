package merkle_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/askbox/pkg/merkle"
)

var _ = Describe("Node", func() {
	Describe("NewNode", func() {
		Context("when creating a root node (no parent)", func() {
			It("keeps the given content and has no parent", func() {
				node := merkle.NewNode("hello world", nil)

				Expect(node.Content).To(Equal("hello world"))
				Expect(node.ParentHash).To(BeNil())
				Expect(node.IsRoot()).To(BeTrue())
			})

			It("produces consistent hashes for the same content", func() {
				node1 := merkle.NewNode("same content", nil)
				node2 := merkle.NewNode("same content", nil)

				Expect(node1.Hash).To(Equal(node2.Hash))
			})

			It("produces different hashes for different content", func() {
				node1 := merkle.NewNode("content A", nil)
				node2 := merkle.NewNode("content B", nil)

				Expect(node1.Hash).NotTo(Equal(node2.Hash))
			})
		})

		Context("when creating a child node (with parent)", func() {
			var parent *merkle.Node

			BeforeEach(func() {
				parent = merkle.NewNode("parent content", nil)
			})

			It("links the child to the parent via ParentHash", func() {
				child := merkle.NewNode("child content", parent)

				Expect(child.ParentHash).NotTo(BeNil())
				Expect(*child.ParentHash).To(Equal(parent.Hash))
				Expect(child.IsRoot()).To(BeFalse())
			})

			It("produces different hashes for same content with different parents", func() {
				parent2 := merkle.NewNode("different parent", nil)
				child1 := merkle.NewNode("same content", parent)
				child2 := merkle.NewNode("same content", parent2)

				Expect(child1.Hash).NotTo(Equal(child2.Hash))
			})
		})
	})

	Describe("Hash computation", func() {
		It("produces a valid SHA-256 hex string (64 characters)", func() {
			node := merkle.NewNode("test", nil)

			Expect(node.Hash).To(MatchRegexp("^[a-f0-9]{64}$"))
		})

		It("hashes a Bucket the same as its generic JSON form", func() {
			bucket := merkle.Bucket{Type: "message", Role: "user", Content: "Question:capital of France"}
			generic := map[string]any{"type": "message", "role": "user", "content": "Question:capital of France"}

			Expect(merkle.NewNode(bucket, nil).Hash).To(Equal(merkle.NewNode(generic, nil).Hash))
		})
	})

	Describe("Bucket", func() {
		It("returns typed bucket content directly", func() {
			node := merkle.NewNode(merkle.Bucket{Type: "message", Role: "assistant", Content: "Paris"}, nil)

			b, ok := node.Bucket()
			Expect(ok).To(BeTrue())
			Expect(b.Content).To(Equal("Paris"))
		})

		It("decodes generic map content", func() {
			node := &merkle.Node{Content: map[string]any{"type": "message", "role": "user", "content": "hi"}}

			b, ok := node.Bucket()
			Expect(ok).To(BeTrue())
			Expect(b.Role).To(Equal("user"))
		})

		It("rejects content that is not a bucket", func() {
			_, ok := merkle.NewNode("plain text", nil).Bucket()
			Expect(ok).To(BeFalse())
		})
	})
})
