package hcl

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/leowmjw/go-temporal-appearance/pkg/temporal"
)

// HCLLessonFile is the top level of a lesson fixture file
type HCLLessonFile struct {
	Lessons []HCLLesson `hcl:"lesson,block"`
}

// HCLLesson describes one lesson: its reference window and both parties' sessions
//
//	lesson "math-101" {
//	  window = [unix("2020-07-13T18:00:00Z"), unix("2020-07-13T19:00:00Z")]
//	  pupil  = [1594663340, 1594663389]
//	  tutor  = [1594663290, 1594663430]
//	  answer = 49
//	}
type HCLLesson struct {
	Label  string  `hcl:"label,label"`
	Window []int64 `hcl:"window"`
	Pupil  []int64 `hcl:"pupil"`
	Tutor  []int64 `hcl:"tutor"`
	Answer *int64  `hcl:"answer,optional"`
}

// evalContext exposes unix("<RFC3339>") so windows can be written as dates
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{},
		Functions: map[string]function.Function{
			"unix": function.New(&function.Spec{
				Params: []function.Parameter{
					{
						Name: "timestamp",
						Type: cty.String,
					},
				},
				Type: function.StaticReturnType(cty.Number),
				Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
					t, err := time.Parse(time.RFC3339, args[0].AsString())
					if err != nil {
						return cty.UnknownVal(cty.Number), fmt.Errorf("invalid timestamp: %w", err)
					}
					return cty.NumberIntVal(t.Unix()), nil
				},
			}),
		},
	}
}

// ParseHCLLessons parses HCL content and converts every lesson block to a temporal.AppearanceRequest
func ParseHCLLessons(hclContent string) ([]temporal.AppearanceRequest, error) {
	return parseHCLLessons([]byte(hclContent), "lessons.hcl")
}

// ParseHCLLesson parses HCL content that must hold exactly one lesson block
func ParseHCLLesson(hclContent string) (*temporal.AppearanceRequest, error) {
	requests, err := ParseHCLLessons(hclContent)
	if err != nil {
		return nil, err
	}
	if len(requests) != 1 {
		return nil, fmt.Errorf("expected exactly one lesson block, found %d", len(requests))
	}
	return &requests[0], nil
}

func parseHCLLessons(content []byte, filename string) ([]temporal.AppearanceRequest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(content, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decodeLessons(file)
}

func decodeLessons(file *hcl.File) ([]temporal.AppearanceRequest, error) {
	var lessonFile HCLLessonFile
	diags := gohcl.DecodeBody(file.Body, evalContext(), &lessonFile)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL body: %s", diags.Error())
	}

	seen := make(map[string]bool, len(lessonFile.Lessons))
	requests := make([]temporal.AppearanceRequest, 0, len(lessonFile.Lessons))
	for _, lesson := range lessonFile.Lessons {
		if seen[lesson.Label] {
			return nil, fmt.Errorf("duplicate lesson %q", lesson.Label)
		}
		seen[lesson.Label] = true

		request, err := convertHCLLesson(lesson)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	return requests, nil
}

func convertHCLLesson(lesson HCLLesson) (temporal.AppearanceRequest, error) {
	request := temporal.AppearanceRequest{
		LessonID: lesson.Label,
		Intervals: temporal.Intervals{
			Lesson: lesson.Window,
			Pupil:  lesson.Pupil,
			Tutor:  lesson.Tutor,
		},
		Answer: lesson.Answer,
	}

	// Reject a malformed window here so the error names the lesson
	if _, err := request.Window(); err != nil {
		return temporal.AppearanceRequest{}, fmt.Errorf("lesson %q: %w", lesson.Label, err)
	}
	return request, nil
}

// IsHCL attempts to detect if the given content is in HCL format
func IsHCL(content []byte) bool {
	_, diags := hclsyntax.ParseConfig(content, "", hcl.Pos{Line: 1, Column: 1})
	return !diags.HasErrors()
}
