package core

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

type executableCodeWire struct {
	Code     string       `json:"code"`
	Language CodeLanguage `json:"language"`
}

type codeExecutionResultWire struct {
	Outcome Outcome `json:"outcome"`
	Output  string  `json:"output"`
}

type fileDataWire struct {
	FileURI  string `json:"fileUri"`
	MIMEType string `json:"mimeType"`
}

type inlineDataWire struct {
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
}

type functionCallWire struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Args any    `json:"args"`
}

type functionResponseWire struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Response any    `json:"response"`
}

type videoMetadataWire struct {
	StartOffset string `json:"startOffset"`
	EndOffset   string `json:"endOffset"`
}

// Top-level part keys.
const (
	partKeyText                = "text"
	partKeyThought             = "thought"
	partKeyExecutableCode      = "executableCode"
	partKeyCodeExecutionResult = "codeExecutionResult"
	partKeyFileData            = "fileData"
	partKeyInlineData          = "inlineData"
	partKeyFunctionCall        = "functionCall"
	partKeyFunctionResponse    = "functionResponse"
	partKeyVideoMetadata       = "videoMetadata"
)

var (
	partSchema = newRecordSchema(
		partKeyText, partKeyThought, partKeyExecutableCode, partKeyCodeExecutionResult,
		partKeyFileData, partKeyInlineData, partKeyFunctionCall, partKeyFunctionResponse,
		partKeyVideoMetadata,
	)

	// nested object schemas, keyed by the canonical top-level part key
	partValueSchemas = map[string]recordSchema{
		partKeyExecutableCode:      schemaOf[executableCodeWire](),
		partKeyCodeExecutionResult: schemaOf[codeExecutionResultWire](),
		partKeyFileData:            schemaOf[fileDataWire](),
		partKeyInlineData:          schemaOf[inlineDataWire](),
		partKeyFunctionCall:        schemaOf[functionCallWire](),
		partKeyFunctionResponse:    schemaOf[functionResponseWire](),
		partKeyVideoMetadata:       schemaOf[videoMetadataWire](),
	}
)

// partShape is one row of the untagged decoding table: the gjson path of the
// identifying field, the JSON type it must have, and the variant decoder
// receiving the raw value under the part key.
type partShape struct {
	key    string
	probe  string
	match  func(gjson.Result) bool
	decode func(raw []byte) (Part, error)
}

func isString(r gjson.Result) bool { return r.Type == gjson.String }
func isBool(r gjson.Result) bool   { return r.Type == gjson.True || r.Type == gjson.False }
func isObject(r gjson.Result) bool { return r.IsObject() }

// partShapes is the decoding precedence. Order is significant.
var partShapes = []partShape{
	{
		key: partKeyText, probe: partKeyText, match: isString,
		decode: func(raw []byte) (Part, error) {
			var s string
			err := json.Unmarshal(raw, &s)
			return TextPart{Text: s}, err
		},
	},
	{
		key: partKeyThought, probe: partKeyThought, match: isBool,
		decode: func(raw []byte) (Part, error) {
			var b bool
			err := json.Unmarshal(raw, &b)
			return ThoughtPart{Thought: b}, err
		},
	},
	{
		key: partKeyExecutableCode, probe: partKeyExecutableCode + ".code", match: isString,
		decode: func(raw []byte) (Part, error) {
			var w executableCodeWire
			err := json.Unmarshal(raw, &w)
			return ExecutableCodePart(w), err
		},
	},
	{
		key: partKeyCodeExecutionResult, probe: partKeyCodeExecutionResult + ".outcome", match: isString,
		decode: func(raw []byte) (Part, error) {
			var w codeExecutionResultWire
			err := json.Unmarshal(raw, &w)
			return CodeExecutionResultPart(w), err
		},
	},
	{
		key: partKeyFileData, probe: partKeyFileData + ".fileUri", match: isString,
		decode: func(raw []byte) (Part, error) {
			var w fileDataWire
			err := json.Unmarshal(raw, &w)
			return FileDataPart(w), err
		},
	},
	{
		key: partKeyInlineData, probe: partKeyInlineData + ".data", match: isString,
		decode: func(raw []byte) (Part, error) {
			var w inlineDataWire
			err := json.Unmarshal(raw, &w)
			return InlineDataPart(w), err
		},
	},
	{
		key: partKeyFunctionCall, probe: partKeyFunctionCall + ".name", match: isString,
		decode: func(raw []byte) (Part, error) {
			var w functionCallWire
			err := json.Unmarshal(raw, &w)
			return FunctionCallPart(w), err
		},
	},
	{
		key: partKeyFunctionResponse, probe: partKeyFunctionResponse + ".name", match: isString,
		decode: func(raw []byte) (Part, error) {
			var w functionResponseWire
			err := json.Unmarshal(raw, &w)
			return FunctionResponsePart(w), err
		},
	},
	{
		key: partKeyVideoMetadata, probe: partKeyVideoMetadata, match: isObject,
		decode: func(raw []byte) (Part, error) {
			var w videoMetadataWire
			err := json.Unmarshal(raw, &w)
			return VideoMetadataPart(w), err
		},
	},
}

// DecodePart decodes one wire part. See the package documentation for the
// precedence order.
func DecodePart(raw []byte) (Part, error) {
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return nil, &UnrecognizedPartError{Err: fmt.Errorf("part is not a JSON object")}
	}

	canonical, keys, err := canonicalPart(raw)
	if err != nil {
		return nil, &UnrecognizedPartError{Keys: keys, Err: err}
	}

	var lastErr error
	for _, shape := range partShapes {
		if !shape.match(gjson.GetBytes(canonical, shape.probe)) {
			continue
		}
		p, err := shape.decode([]byte(gjson.GetBytes(canonical, shape.key).Raw))
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", shape.key, err)
			continue
		}
		return p, nil
	}
	return nil, &UnrecognizedPartError{Keys: keys, Err: lastErr}
}

// canonicalPart rewrites a part object and its nested variant objects to
// camelCase keys. It also returns the top-level keys in received order.
func canonicalPart(raw []byte) ([]byte, []string, error) {
	known, extra, err := partSchema.split(raw)
	if err != nil {
		return nil, nil, err
	}
	keys := make([]string, 0, len(known)+len(extra))
	gjson.ParseBytes(raw).ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})

	for k, v := range known {
		s, ok := partValueSchemas[k]
		if !ok || !gjson.ParseBytes(v).IsObject() {
			continue
		}
		c, err := s.canonicalize(v)
		if err != nil {
			return nil, keys, err
		}
		known[k] = c
	}
	out, err := json.Marshal(known)
	return out, keys, err
}

// EncodePart encodes p as its wire object. Exactly the variant's key is
// emitted, with every field of the variant.
func EncodePart(p Part) ([]byte, error) {
	var (
		key string
		val any
	)
	switch t := p.(type) {
	case TextPart:
		key, val = partKeyText, t.Text
	case ThoughtPart:
		key, val = partKeyThought, t.Thought
	case ExecutableCodePart:
		key, val = partKeyExecutableCode, executableCodeWire(t)
	case CodeExecutionResultPart:
		key, val = partKeyCodeExecutionResult, codeExecutionResultWire(t)
	case FileDataPart:
		key, val = partKeyFileData, fileDataWire(t)
	case InlineDataPart:
		key, val = partKeyInlineData, inlineDataWire(t)
	case FunctionCallPart:
		key, val = partKeyFunctionCall, functionCallWire(t)
	case FunctionResponsePart:
		key, val = partKeyFunctionResponse, functionResponseWire(t)
	case VideoMetadataPart:
		key, val = partKeyVideoMetadata, videoMetadataWire(t)
	case nil:
		return nil, fmt.Errorf("cannot encode nil part")
	default:
		return nil, fmt.Errorf("cannot encode part of type %T", p)
	}
	return json.Marshal(map[string]any{key: val})
}
