// Package merkle is an implementation of a Merkle DAG used to record askbox
// conversations as content-addressed chains of turns.
package merkle

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Node represents a single content-addressed node in a Merkle DAG
type Node struct {
	// Hash is the content-addressed identifier (SHA-256, hex-encoded)
	Hash string `json:"hash"`

	// ParentHash links to the previous node hash.
	// This will be nil for root nodes.
	ParentHash *string `json:"parent_hash"`

	// Content is the hashable content for the node
	Content any `json:"content"`
}

// Bucket is the content askbox stores for each recorded turn.
type Bucket struct {
	Type     string         `json:"type"` // always "message"
	Role     string         `json:"role"`
	Content  string         `json:"content"`
	Model    string         `json:"model,omitempty"`
	Provider string         `json:"provider,omitempty"`
	Metrics  map[string]any `json:"metrics,omitempty"`
}

// NewNode creates a new node with the computed hash for the provided content
func NewNode(content any, parent *Node) *Node {
	n := &Node{
		Content: content,
	}

	if parent != nil {
		h := parent.Hash
		n.ParentHash = &h
	}

	n.Hash = n.computeHash()
	return n
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool {
	return n.ParentHash == nil
}

// Bucket decodes the node content as a Bucket. Nodes read back from SQLite
// carry their content as generic JSON, so the content is round-tripped.
func (n *Node) Bucket() (Bucket, bool) {
	if b, ok := n.Content.(Bucket); ok {
		return b, true
	}

	raw, err := json.Marshal(n.Content)
	if err != nil {
		return Bucket{}, false
	}

	var b Bucket
	if err := json.Unmarshal(raw, &b); err != nil || b.Type == "" {
		return Bucket{}, false
	}
	return b, true
}

// hashInput is the canonical shape fed to the hash function.
type hashInput struct {
	Parent  string `json:"parent,omitempty"`
	Content any    `json:"content"`
}

func (n *Node) computeHash() string {
	in := hashInput{Content: n.Content}
	if n.ParentHash != nil {
		in.Parent = *n.ParentHash
	}

	// encoding/json sorts map keys, which keeps the encoding deterministic
	data, err := json.Marshal(in)
	if err != nil {
		panic("merkle: content is not JSON encodable: " + err.Error())
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
