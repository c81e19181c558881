package tracescmder

import (
	"bytes"
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/askbox/pkg/merkle"
)

var _ = Describe("Traces Commands", func() {
	var (
		ctx     context.Context
		tmpDir  string
		srcPath string
		dstPath string
	)

	BeforeEach(func() {
		ctx = context.Background()
		tmpDir = GinkgoT().TempDir()
		srcPath = filepath.Join(tmpDir, "source.db")
		dstPath = filepath.Join(tmpDir, "target.db")
	})

	makeNode := func(role, text string, parent *merkle.Node) *merkle.Node {
		return merkle.NewNode(merkle.Bucket{
			Type:     "message",
			Role:     role,
			Content:  text,
			Model:    "gemini-2.5-flash",
			Provider: "google",
		}, parent)
	}

	seed := func(path string, nodes ...*merkle.Node) {
		s, err := merkle.NewSQLiteStorer(path)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()
		for _, n := range nodes {
			_, err := s.Put(ctx, n)
			Expect(err).NotTo(HaveOccurred())
		}
	}

	countNodes := func(path string) int {
		s, err := merkle.NewSQLiteStorer(path)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()
		nodes, err := s.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		return len(nodes)
	}

	runCmd := func(args ...string) string {
		var out bytes.Buffer
		cmd := NewTracesCmd()
		cmd.SetOut(&out)
		cmd.SetArgs(args)
		Expect(cmd.ExecuteContext(ctx)).To(Succeed())
		return out.String()
	}

	Describe("merge", func() {
		It("merges nodes from source into target", func() {
			question := makeNode("user", "Question:capital of France", nil)
			seed(srcPath, question, makeNode("assistant", "Paris.", question))
			seed(dstPath, makeNode("user", "Question:capital of Spain", nil))

			out := runCmd("merge", "--tape-db", dstPath, srcPath)

			Expect(out).To(ContainSubstring("2 new, 0 already existed"))
			Expect(countNodes(dstPath)).To(Equal(3))
		})

		It("deduplicates when merging the same source twice", func() {
			seed(srcPath, makeNode("user", "dedup test", nil))

			runCmd("merge", "--tape-db", dstPath, srcPath)
			out := runCmd("merge", "--tape-db", dstPath, srcPath)

			Expect(out).To(ContainSubstring("0 new, 1 already existed"))
			Expect(countNodes(dstPath)).To(Equal(1))
		})

		It("merges multiple sources", func() {
			src2Path := filepath.Join(tmpDir, "source2.db")
			seed(srcPath, makeNode("user", "from source 1", nil))
			seed(src2Path, makeNode("user", "from source 2", nil))

			runCmd("merge", "--tape-db", dstPath, srcPath, src2Path)

			Expect(countNodes(dstPath)).To(Equal(2))
		})
	})

	Describe("list", func() {
		It("prints each recorded answer with its question", func() {
			system := makeNode("system", "You are a helpful assistant.", nil)
			question := makeNode("user", "Question:capital of France", system)
			seed(dstPath, system, question, makeNode("assistant", "Paris is the capital.", question))

			out := runCmd("list", "--tape-db", dstPath)

			Expect(out).To(ContainSubstring("Q: Question:capital of France"))
			Expect(out).To(ContainSubstring("A: Paris is the capital."))
			Expect(out).To(ContainSubstring("gemini-2.5-flash"))
		})

		It("truncates answers to --width", func() {
			question := makeNode("user", "Question:capital of France", nil)
			seed(dstPath, question, makeNode("assistant", "Paris is the capital.", question))

			out := runCmd("list", "--tape-db", dstPath, "--width", "5")

			Expect(out).To(ContainSubstring("A: Paris..."))
		})

		It("rejects a width below one", func() {
			var out bytes.Buffer
			cmd := NewTracesCmd()
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs([]string{"list", "--tape-db", dstPath, "--width", "-1"})

			Expect(cmd.ExecuteContext(ctx)).To(MatchError(ContainSubstring("--width must be at least 1")))
		})

		It("reports an empty database", func() {
			Expect(runCmd("list", "--tape-db", dstPath)).To(ContainSubstring("No recorded answers."))
		})
	})
})
