// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package yamldoc

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/walteh/filesync/pkg/section"
)

func lookup(start *yaml.Node, path section.Path) (*yaml.Node, error) {
	if start == nil {
		return nil, &section.NotFoundError{Path: path, Reason: "document is empty"}
	}

	current := []*yaml.Node{start}
	for i, seg := range path {
		var next []*yaml.Node
		for _, n := range current {
			next = append(next, step(resolveAlias(n), seg)...)
		}
		switch {
		case len(next) == 0:
			return nil, notFound(path, i)
		case len(next) > 1:
			return nil, &section.AmbiguousError{Path: path, Matches: len(next)}
		}
		current = next
	}
	return current[0], nil
}

func step(n *yaml.Node, seg section.Segment) []*yaml.Node {
	if seg.IsIndex {
		if n.Kind != yaml.SequenceNode {
			return nil
		}
		if seg.Wildcard {
			return n.Content
		}
		idx, ok := normalizeIndex(seg.Index, len(n.Content))
		if !ok {
			return nil
		}
		return []*yaml.Node{n.Content[idx]}
	}

	if n.Kind != yaml.MappingNode {
		return nil
	}
	var out []*yaml.Node
	for _, i := range keyIndexes(n, seg.Key) {
		out = append(out, n.Content[i+1])
	}
	return out
}

// assign replaces the node at path below container. container must belong to a private copy.
func assign(container *yaml.Node, path section.Path, replacement *yaml.Node, create bool) error {
	node := container
	for i, seg := range path {
		last := i == len(path)-1

		if node.Kind == yaml.AliasNode {
			return &section.NotFoundError{Path: path, Reason: "cannot write through an alias"}
		}

		if seg.IsIndex {
			if node.Kind != yaml.SequenceNode {
				return notFound(path, i)
			}
			if seg.Wildcard {
				return &section.AmbiguousError{Path: path, Matches: len(node.Content)}
			}
			idx, ok := normalizeIndex(seg.Index, len(node.Content))
			if !ok {
				return notFound(path, i)
			}
			if last {
				node.Content[idx] = replacement
				return nil
			}
			node = node.Content[idx]
			continue
		}

		if node.Kind != yaml.MappingNode {
			if !create || !isNull(node) {
				return notFound(path, i)
			}
			*node = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", HeadComment: node.HeadComment, LineComment: node.LineComment}
		}

		idxs := keyIndexes(node, seg.Key)
		switch {
		case len(idxs) > 1:
			return &section.AmbiguousError{Path: path, Matches: len(idxs)}
		case len(idxs) == 0:
			if !create {
				return notFound(path, i)
			}
			child := replacement
			if !last {
				child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: seg.Key}, child)
			node = child
		case last:
			node.Content[idxs[0]+1] = replacement
		default:
			node = node.Content[idxs[0]+1]
		}
		if last {
			return nil
		}
	}
	return nil
}

func valueOf(node *yaml.Node, path section.Path) (section.Value, error) {
	n := resolveAlias(node)
	if n.Kind == yaml.ScalarNode {
		kind := section.KindScalar
		if strings.Contains(n.Value, "\n") {
			kind = section.KindBlock
		}
		return section.Value{Text: n.Value, Kind: kind, Tag: n.ShortTag(), Name: path.Last()}, nil
	}

	tree := detach(n)
	out, err := encode(tree)
	if err != nil {
		return section.Value{}, err
	}
	return section.Value{
		Text: strings.TrimSuffix(string(out), "\n"),
		Kind: section.KindBlock,
		Tree: tree,
		Name: path.Last(),
	}, nil
}

func buildNode(value section.Value, previous, next string) (*yaml.Node, error) {
	if previous != "" || next != "" {
		return &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Style: yaml.LiteralStyle,
			Value: wrapLines(previous, value.Text, next),
		}, nil
	}

	if value.Tree != nil {
		return detach(value.Tree), nil
	}

	tag := value.Tag
	if tag == "" {
		tag = "!!str"
	}
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value.Text}
	if strings.Contains(value.Text, "\n") {
		n.Style = yaml.LiteralStyle
	}
	return n, nil
}

func keyIndexes(mapping *yaml.Node, key string) []int {
	var out []int
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if resolveAlias(mapping.Content[i]).Value == key {
			out = append(out, i)
		}
	}
	return out
}

func normalizeIndex(idx, length int) (int, bool) {
	if idx < 0 {
		idx += length
	}
	return idx, idx >= 0 && idx < length
}

func notFound(path section.Path, at int) error {
	if at >= len(path)-1 {
		return &section.NotFoundError{Path: path}
	}
	return &section.NotFoundError{Path: path, Reason: fmt.Sprintf("%s does not resolve", path[:at+1].String())}
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func deepCopy(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Content != nil {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = deepCopy(child)
		}
	}
	return &c
}

// detach copies n with aliases expanded and anchors dropped, so the copy can be
// placed into another document.
func detach(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	n = resolveAlias(n)
	c := *n
	c.Anchor = ""
	c.Alias = nil
	if n.Content != nil {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = detach(child)
		}
	}
	return &c
}
