package csv

import (
	"fmt"

	"github.com/shapestone/shape-core/pkg/ast"
)

// NodeToRecords converts an AST node to rows of fields.
//
// The node is a file node (an *ast.ArrayDataNode of records) as produced by
// Parse, or a single record node, which yields one row. Literal values that
// are not strings are formatted with %v.
//
// Example:
//
//	node, _ := csv.Parse("name,age\nAlice,30\n")
//	records, _ := csv.NodeToRecords(node)
//	// records is [][]string{{"name","age"}, {"Alice","30"}}
func NodeToRecords(node ast.SchemaNode) ([][]string, error) {
	if node == nil {
		return [][]string{}, nil
	}
	file, ok := node.(*ast.ArrayDataNode)
	if !ok {
		return nil, fmt.Errorf("csv: expected *ast.ArrayDataNode, got %T", node)
	}

	elements := file.Elements()
	if len(elements) == 0 {
		return [][]string{}, nil
	}
	if _, isField := elements[0].(*ast.LiteralNode); isField {
		row, err := recordFields(file)
		if err != nil {
			return nil, err
		}
		return [][]string{row}, nil
	}

	records := make([][]string, len(elements))
	for i, elem := range elements {
		record, ok := elem.(*ast.ArrayDataNode)
		if !ok {
			return nil, fmt.Errorf("csv: record %d: expected *ast.ArrayDataNode, got %T", i, elem)
		}
		row, err := recordFields(record)
		if err != nil {
			return nil, fmt.Errorf("csv: record %d: %w", i, err)
		}
		records[i] = row
	}
	return records, nil
}

func recordFields(record *ast.ArrayDataNode) ([]string, error) {
	fields := make([]string, 0, record.Len())
	for _, elem := range record.Elements() {
		lit, ok := elem.(*ast.LiteralNode)
		if !ok {
			return nil, fmt.Errorf("expected field to be *ast.LiteralNode, got %T", elem)
		}
		fields = append(fields, literalString(lit))
	}
	return fields, nil
}

func literalString(lit *ast.LiteralNode) string {
	switch v := lit.Value().(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// RecordsToNode converts rows of fields to an AST file node.
//
// Example:
//
//	records := [][]string{
//	    {"name", "age"},
//	    {"Alice", "30"},
//	}
//	node, _ := csv.RecordsToNode(records)
func RecordsToNode(records [][]string) (ast.SchemaNode, error) {
	nodes := make([]ast.SchemaNode, len(records))
	for i, record := range records {
		fields := make([]ast.SchemaNode, len(record))
		for j, f := range record {
			fields[j] = ast.NewLiteralNode(f, ast.ZeroPosition())
		}
		nodes[i] = ast.NewArrayDataNode(fields, ast.ZeroPosition())
	}
	return ast.NewArrayDataNode(nodes, ast.ZeroPosition()), nil
}
