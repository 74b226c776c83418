package graphextract

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// walkPythonFile ports original_source's python_parser.py: file-level
// imports first, then top-level classes/functions with methods extracted
// recursively inside each class body.
func walkPythonFile(e *Extractor, path string, source []byte, root *sitter.Node) File {
	var file File

	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "import_statement":
			file.Relationships = append(file.Relationships, extractPythonImportStatement(path, child, source)...)
		case "import_from_statement":
			file.Relationships = append(file.Relationships, extractPythonImportFrom(path, child, source)...)
		case "class_definition":
			ents, rels := extractPythonClass(path, child, source, "")
			file.Entities = append(file.Entities, ents...)
			file.Relationships = append(file.Relationships, rels...)
		case "function_definition":
			ent, rels := extractPythonFunction(path, child, source, "")
			file.Entities = append(file.Entities, ent)
			file.Relationships = append(file.Relationships, rels...)
		}
	}

	return file
}

func extractPythonImportStatement(path string, node *sitter.Node, source []byte) []Relationship {
	var out []Relationship
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "dotted_name" {
			out = append(out, Relationship{
				Kind:       RelImports,
				ToNameHint: nodeText(child, source),
				Location:   locationOf(path, node),
			})
		}
	}
	return out
}

func extractPythonImportFrom(path string, node *sitter.Node, source []byte) []Relationship {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		return nil
	}
	return []Relationship{{
		Kind:       RelImports,
		ToNameHint: nodeText(moduleNode, source),
		Location:   locationOf(path, node),
	}}
}

func extractPythonClass(path string, node *sitter.Node, source []byte, parentClass string) ([]Entity, []Relationship) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil, nil
	}
	className := nodeText(nameNode, source)
	qualifiedName := className
	if parentClass != "" {
		qualifiedName = parentClass + "." + className
	}

	body := node.ChildByFieldName("body")
	docstring := extractDocstringFromBlock(body, source)

	entities := []Entity{{
		Kind:          EntityClass,
		Name:          className,
		QualifiedName: qualifiedName,
		ParentName:    parentClass,
		StartLine:     int(node.StartPoint().Row) + 1,
		EndLine:       int(node.EndPoint().Row) + 1,
		Docstring:     docstring,
		Language:      "python",
	}}
	var relationships []Relationship

	if superclasses := node.ChildByFieldName("superclasses"); superclasses != nil {
		for i := 0; i < int(superclasses.NamedChildCount()); i++ {
			base := superclasses.NamedChild(i)
			if base.Type() == "identifier" || base.Type() == "attribute" {
				relationships = append(relationships, Relationship{
					Kind:              RelInherits,
					FromQualifiedName: qualifiedName,
					ToNameHint:        nodeText(base, source),
					Location:          locationOf(path, base),
				})
			}
		}
	}

	if body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			child := body.Child(i)
			if child.Type() == "function_definition" {
				ent, rels := extractPythonFunction(path, child, source, qualifiedName)
				entities = append(entities, ent)
				relationships = append(relationships, rels...)
			}
		}
	}

	return entities, relationships
}

func extractPythonFunction(path string, node *sitter.Node, source []byte, parentClass string) (Entity, []Relationship) {
	nameNode := node.ChildByFieldName("name")
	funcName := "<anonymous>"
	if nameNode != nil {
		funcName = nodeText(nameNode, source)
	}

	kind := EntityFunction
	qualifiedName := funcName
	if parentClass != "" {
		kind = EntityMethod
		qualifiedName = parentClass + "." + funcName
	}

	paramsNode := node.ChildByFieldName("parameters")
	signature := "()"
	if paramsNode != nil {
		signature = nodeText(paramsNode, source)
	}

	body := node.ChildByFieldName("body")
	docstring := extractDocstringFromBlock(body, source)

	var relationships []Relationship
	if body != nil {
		relationships = extractPythonCalls(path, body, source, qualifiedName)
	}

	entity := Entity{
		Kind:          kind,
		Name:          funcName,
		QualifiedName: qualifiedName,
		ParentName:    parentClass,
		StartLine:     int(node.StartPoint().Row) + 1,
		EndLine:       int(node.EndPoint().Row) + 1,
		Signature:     signature,
		Docstring:     docstring,
		Language:      "python",
	}
	return entity, relationships
}

func extractPythonCalls(path string, body *sitter.Node, source []byte, callerQualifiedName string) []Relationship {
	var out []Relationship
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n.Type() == "call" {
			if funcNode := n.ChildByFieldName("function"); funcNode != nil {
				var called string
				switch funcNode.Type() {
				case "identifier":
					called = nodeText(funcNode, source)
				case "attribute":
					if attr := funcNode.ChildByFieldName("attribute"); attr != nil {
						called = nodeText(attr, source)
					} else {
						called = nodeText(funcNode, source)
					}
				default:
					called = nodeText(funcNode, source)
				}
				out = append(out, Relationship{
					Kind:              RelCalls,
					FromQualifiedName: callerQualifiedName,
					ToNameHint:        called,
					Location:          locationOf(path, funcNode),
				})
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(body)
	return out
}

// extractDocstringFromBlock extracts the first string-literal statement in
// a class/function body, the Python docstring convention.
func extractDocstringFromBlock(body *sitter.Node, source []byte) string {
	if body == nil || body.ChildCount() == 0 {
		return ""
	}
	first := body.Child(0)
	if first.Type() != "expression_statement" || first.ChildCount() == 0 {
		return ""
	}
	expr := first.Child(0)
	if expr.Type() != "string" {
		return ""
	}
	text := nodeText(expr, source)
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		text = strings.TrimPrefix(text, q)
		text = strings.TrimSuffix(text, q)
	}
	return strings.TrimSpace(text)
}

func locationOf(path string, node *sitter.Node) string {
	return path + ":" + strconv.Itoa(int(node.StartPoint().Row)+1)
}
