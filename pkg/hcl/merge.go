package hcl

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/leowmjw/go-temporal-appearance/pkg/temporal"
)

// MergeHCLFiles combines multiple HCL files into a single HCL file body,
// the way Terraform loads every .tf file in a directory.
func MergeHCLFiles(filePaths []string) (*hcl.File, error) {
	parser := hclparse.NewParser()
	var mergedContent bytes.Buffer

	for _, path := range filePaths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", path, err)
		}

		mergedContent.Write(content)
		mergedContent.WriteString("\n")
	}

	file, diags := parser.ParseHCL(mergedContent.Bytes(), "merged.hcl")
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse merged HCL content: %s", diags.Error())
	}

	return file, nil
}

// FindHCLFiles returns the lesson files under dirPath in lexical order
func FindHCLFiles(dirPath string) ([]string, error) {
	var hclFiles []string
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && IsHCLBasedOnExtension(info.Name()) {
			hclFiles = append(hclFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}
	sort.Strings(hclFiles)
	return hclFiles, nil
}

// ParseHCLFile parses the lessons of a single file
func ParseHCLFile(path string) ([]temporal.AppearanceRequest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return parseHCLLessons(content, filepath.Base(path))
}

// ParseHCLDirectory parses all lesson files in a directory as one merged document.
// Lesson labels must be unique across files.
func ParseHCLDirectory(dirPath string) ([]temporal.AppearanceRequest, error) {
	hclFiles, err := FindHCLFiles(dirPath)
	if err != nil {
		return nil, err
	}
	if len(hclFiles) == 0 {
		return nil, fmt.Errorf("no HCL files found in directory %s", dirPath)
	}

	mergedFile, err := MergeHCLFiles(hclFiles)
	if err != nil {
		return nil, err
	}

	return decodeLessons(mergedFile)
}

// ParseHCLPath parses a lesson file or a directory of lesson files
func ParseHCLPath(path string) ([]temporal.AppearanceRequest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}
	if info.IsDir() {
		return ParseHCLDirectory(path)
	}
	if !IsHCLBasedOnExtension(path) {
		return nil, fmt.Errorf("file %s does not have an .hcl extension", path)
	}
	return ParseHCLFile(path)
}
