// Package genaipart converts between the ADK wire parts of package core and
// the part types of google.golang.org/genai, so events received from an ADK
// server can be handed to code written against the Gemini SDK and back.
package genaipart

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/hupe1980/adkclient/core"
)

// ErrNotObject is returned when function call arguments or a function
// response are not JSON objects; genai only carries objects.
var ErrNotObject = errors.New("value is not a JSON object")

// ToGenAI converts one part.
func ToGenAI(p core.Part) (*genai.Part, error) {
	switch v := p.(type) {
	case core.TextPart:
		return &genai.Part{Text: v.Text}, nil
	case core.ThoughtPart:
		return &genai.Part{Thought: v.Thought}, nil
	case core.ExecutableCodePart:
		return &genai.Part{ExecutableCode: &genai.ExecutableCode{Code: v.Code, Language: genai.Language(v.Language)}}, nil
	case core.CodeExecutionResultPart:
		return &genai.Part{CodeExecutionResult: &genai.CodeExecutionResult{Outcome: genai.Outcome(v.Outcome), Output: v.Output}}, nil
	case core.FileDataPart:
		return &genai.Part{FileData: &genai.FileData{FileURI: v.FileURI, MIMEType: v.MIMEType}}, nil
	case core.InlineDataPart:
		data, err := base64.StdEncoding.DecodeString(v.Data)
		if err != nil {
			return nil, fmt.Errorf("inline data: %w", err)
		}
		return &genai.Part{InlineData: &genai.Blob{Data: data, MIMEType: v.MIMEType}}, nil
	case core.FunctionCallPart:
		args, err := asObject(v.Args)
		if err != nil {
			return nil, fmt.Errorf("function call %q args: %w", v.Name, err)
		}
		return &genai.Part{FunctionCall: &genai.FunctionCall{ID: v.ID, Name: v.Name, Args: args}}, nil
	case core.FunctionResponsePart:
		resp, err := asObject(v.Response)
		if err != nil {
			return nil, fmt.Errorf("function response %q: %w", v.Name, err)
		}
		return &genai.Part{FunctionResponse: &genai.FunctionResponse{ID: v.ID, Name: v.Name, Response: resp}}, nil
	case core.VideoMetadataPart:
		start, err := parseOffset(v.StartOffset)
		if err != nil {
			return nil, fmt.Errorf("video start offset: %w", err)
		}
		end, err := parseOffset(v.EndOffset)
		if err != nil {
			return nil, fmt.Errorf("video end offset: %w", err)
		}
		return &genai.Part{VideoMetadata: &genai.VideoMetadata{StartOffset: start, EndOffset: end}}, nil
	case nil:
		return nil, errors.New("nil part")
	default:
		return nil, fmt.Errorf("unsupported part type %T", p)
	}
}

// FromGenAI converts one genai part, choosing the variant with the same
// precedence as core.DecodePart. A part with nothing set becomes an empty
// TextPart.
func FromGenAI(p *genai.Part) (core.Part, error) {
	if p == nil {
		return nil, errors.New("nil part")
	}
	switch {
	case p.Text != "":
		return core.TextPart{Text: p.Text}, nil
	case p.Thought:
		return core.ThoughtPart{Thought: true}, nil
	case p.ExecutableCode != nil:
		return core.ExecutableCodePart{Code: p.ExecutableCode.Code, Language: core.CodeLanguage(p.ExecutableCode.Language)}, nil
	case p.CodeExecutionResult != nil:
		return core.CodeExecutionResultPart{Outcome: core.Outcome(p.CodeExecutionResult.Outcome), Output: p.CodeExecutionResult.Output}, nil
	case p.FileData != nil:
		return core.FileDataPart{FileURI: p.FileData.FileURI, MIMEType: p.FileData.MIMEType}, nil
	case p.InlineData != nil:
		return core.InlineDataPart{Data: base64.StdEncoding.EncodeToString(p.InlineData.Data), MIMEType: p.InlineData.MIMEType}, nil
	case p.FunctionCall != nil:
		return core.FunctionCallPart{ID: p.FunctionCall.ID, Name: p.FunctionCall.Name, Args: fromObject(p.FunctionCall.Args)}, nil
	case p.FunctionResponse != nil:
		return core.FunctionResponsePart{ID: p.FunctionResponse.ID, Name: p.FunctionResponse.Name, Response: fromObject(p.FunctionResponse.Response)}, nil
	case p.VideoMetadata != nil:
		return core.VideoMetadataPart{
			StartOffset: formatOffset(p.VideoMetadata.StartOffset),
			EndOffset:   formatOffset(p.VideoMetadata.EndOffset),
		}, nil
	default:
		return core.TextPart{}, nil
	}
}

// ContentToGenAI converts a content preserving part order.
func ContentToGenAI(c core.Content) (*genai.Content, error) {
	out := &genai.Content{Role: c.Role, Parts: make([]*genai.Part, 0, len(c.Parts))}
	for i, p := range c.Parts {
		gp, err := ToGenAI(p)
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		out.Parts = append(out.Parts, gp)
	}
	return out, nil
}

// ContentFromGenAI converts a genai content preserving part order.
func ContentFromGenAI(c *genai.Content) (core.Content, error) {
	if c == nil {
		return core.Content{}, errors.New("nil content")
	}
	out := core.Content{Role: c.Role, Parts: make([]core.Part, 0, len(c.Parts))}
	for i, gp := range c.Parts {
		p, err := FromGenAI(gp)
		if err != nil {
			return core.Content{}, fmt.Errorf("part %d: %w", i, err)
		}
		out.Parts = append(out.Parts, p)
	}
	return out, nil
}

func asObject(v any) (map[string]any, error) {
	switch m := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrNotObject, v)
	}
}

// fromObject keeps a nil map as an absent value.
func fromObject(m map[string]any) any {
	if m == nil {
		return nil
	}
	return m
}

// parseOffset reads a protobuf style duration ("1.5s"). Empty is zero.
func parseOffset(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// formatOffset writes a duration as fractional seconds ("90s", "1.5s").
func formatOffset(d time.Duration) string {
	if d == 0 {
		return ""
	}
	s := strconv.FormatFloat(d.Seconds(), 'f', 9, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return s + "s"
}
