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

package pattern

import (
	"bytes"
	"context"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type descriptionMeta struct {
	Description string `yaml:"description"`
	Summary     string `yaml:"summary"`
}

var markdown = goldmark.New()

// 📝 Summarize returns a one-line summary of a pattern description.
// A front matter description or summary key wins; otherwise the first
// markdown paragraph is used.
func Summarize(ctx context.Context, source []byte) string {
	var meta descriptionMeta
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("parsing description front matter")
		body = source
	}

	switch {
	case meta.Description != "":
		return collapse(meta.Description)
	case meta.Summary != "":
		return collapse(meta.Summary)
	}

	return firstParagraph(body)
}

func firstParagraph(source []byte) string {
	doc := markdown.Parser().Parse(text.NewReader(source))

	var summary string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		p, ok := n.(*ast.Paragraph)
		if !ok {
			return ast.WalkContinue, nil
		}

		var sb strings.Builder
		lines := p.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			sb.Write(seg.Value(source))
			sb.WriteByte(' ')
		}
		summary = collapse(sb.String())
		return ast.WalkStop, nil
	})

	return summary
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
