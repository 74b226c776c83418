package graphextract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// walkTypeScriptFile ports original_source's typescript_parser.py: a single
// TSX grammar handles both .ts and .tsx, imports/exports/classes/functions
// are walked at the top level, methods inside class bodies.
func walkTypeScriptFile(e *Extractor, path string, source []byte, root *sitter.Node) File {
	var file File

	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "import_statement":
			file.Relationships = append(file.Relationships, extractTSImport(path, child, source)...)
		case "export_statement":
			ents, rels := extractTSExportStatement(path, child, source)
			file.Entities = append(file.Entities, ents...)
			file.Relationships = append(file.Relationships, rels...)
		case "function_declaration":
			ent, rels := extractTSFunction(path, child, source, "")
			file.Entities = append(file.Entities, ent)
			file.Relationships = append(file.Relationships, rels...)
		case "class_declaration":
			ents, rels := extractTSClass(path, child, source, "")
			file.Entities = append(file.Entities, ents...)
			file.Relationships = append(file.Relationships, rels...)
		case "lexical_declaration":
			ents, rels := extractTSLexicalDeclaration(path, child, source)
			file.Entities = append(file.Entities, ents...)
			file.Relationships = append(file.Relationships, rels...)
		}
	}

	return file
}

func extractTSImport(path string, node *sitter.Node, source []byte) []Relationship {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "string" {
			module := strings.Trim(nodeText(child, source), `"'`)
			if module == "" {
				return nil
			}
			return []Relationship{{Kind: RelImports, ToNameHint: module, Location: locationOf(path, node)}}
		}
	}
	return nil
}

func extractTSExportStatement(path string, node *sitter.Node, source []byte) ([]Entity, []Relationship) {
	var entities []Entity
	var relationships []Relationship
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "function_declaration":
			ent, rels := extractTSFunction(path, child, source, "")
			entities = append(entities, ent)
			relationships = append(relationships, rels...)
		case "class_declaration":
			ents, rels := extractTSClass(path, child, source, "")
			entities = append(entities, ents...)
			relationships = append(relationships, rels...)
		case "lexical_declaration":
			ents, rels := extractTSLexicalDeclaration(path, child, source)
			entities = append(entities, ents...)
			relationships = append(relationships, rels...)
		}
	}
	return entities, relationships
}

// extractTSLexicalDeclaration ports original_source's
// _extract_lexical_declaration: a const/let binding whose initializer is an
// arrow function or function expression is recorded as a function entity,
// e.g. "const handler = () => {...}".
func extractTSLexicalDeclaration(path string, node *sitter.Node, source []byte) ([]Entity, []Relationship) {
	var decl *sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if c := node.NamedChild(i); c.Type() == "variable_declarator" {
			decl = c
			break
		}
	}
	if decl == nil {
		return nil, nil
	}
	nameNode := decl.ChildByFieldName("name")
	valueNode := decl.ChildByFieldName("value")
	if nameNode == nil || valueNode == nil {
		return nil, nil
	}
	if valueNode.Type() != "arrow_function" && valueNode.Type() != "function" {
		return nil, nil
	}

	funcName := nodeText(nameNode, source)
	signature := "()"
	if paramsNode := valueNode.ChildByFieldName("parameters"); paramsNode != nil {
		signature = nodeText(paramsNode, source)
	}

	var relationships []Relationship
	if body := valueNode.ChildByFieldName("body"); body != nil {
		relationships = extractTSCalls(path, body, source, funcName)
	}

	entity := Entity{
		Kind:          EntityFunction,
		Name:          funcName,
		QualifiedName: funcName,
		StartLine:     int(node.StartPoint().Row) + 1,
		EndLine:       int(node.EndPoint().Row) + 1,
		Signature:     signature,
		Docstring:     tsDocstring(node, source),
		Language:      "typescript",
	}
	return []Entity{entity}, relationships
}

func extractTSClass(path string, node *sitter.Node, source []byte, parentClass string) ([]Entity, []Relationship) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil, nil
	}
	className := nodeText(nameNode, source)
	qualifiedName := className
	if parentClass != "" {
		qualifiedName = parentClass + "." + className
	}

	entities := []Entity{{
		Kind:          EntityClass,
		Name:          className,
		QualifiedName: qualifiedName,
		ParentName:    parentClass,
		StartLine:     int(node.StartPoint().Row) + 1,
		EndLine:       int(node.EndPoint().Row) + 1,
		Docstring:     tsDocstring(node, source),
		Language:      "typescript",
	}}
	var relationships []Relationship

	if superclass := node.ChildByFieldName("superclass"); superclass != nil {
		if baseName := tsIdentifierText(superclass, source); baseName != "" {
			relationships = append(relationships, Relationship{
				Kind:              RelInherits,
				FromQualifiedName: qualifiedName,
				ToNameHint:        baseName,
				Location:          locationOf(path, superclass),
			})
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			child := body.Child(i)
			if child.Type() == "method_definition" {
				ent, rels := extractTSMethod(path, child, source, qualifiedName)
				entities = append(entities, ent)
				relationships = append(relationships, rels...)
			}
		}
	}

	return entities, relationships
}

// tsDocstring looks for the nearest preceding "/** ... */" block comment
// attached to node, the JSDoc convention, mirroring extractDocstringFromBlock's
// role for Python's string-literal convention.
func tsDocstring(node *sitter.Node, source []byte) string {
	prev := node.PrevSibling()
	if prev == nil || prev.Type() != "comment" {
		return ""
	}
	text := nodeText(prev, source)
	if !strings.HasPrefix(text, "/**") {
		return ""
	}
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimSuffix(text, "*/")
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, " ")
}

// tsIdentifierText resolves an identifier or member_expression (e.g.
// "pkg.Base") into a dotted qualified-name hint.
func tsIdentifierText(node *sitter.Node, source []byte) string {
	if node.Type() == "identifier" {
		return nodeText(node, source)
	}
	if node.Type() == "member_expression" {
		obj := node.ChildByFieldName("object")
		prop := node.ChildByFieldName("property")
		if obj != nil && prop != nil {
			return tsIdentifierText(obj, source) + "." + nodeText(prop, source)
		}
	}
	return nodeText(node, source)
}

func extractTSFunction(path string, node *sitter.Node, source []byte, parentClass string) (Entity, []Relationship) {
	nameNode := node.ChildByFieldName("name")
	funcName := "<anonymous>"
	if nameNode != nil {
		funcName = nodeText(nameNode, source)
	}
	return buildTSFunctionEntity(path, node, source, funcName, parentClass, EntityFunction)
}

func extractTSMethod(path string, node *sitter.Node, source []byte, parentClass string) (Entity, []Relationship) {
	nameNode := node.ChildByFieldName("name")
	methodName := "<anonymous>"
	if nameNode != nil {
		methodName = nodeText(nameNode, source)
	}
	return buildTSFunctionEntity(path, node, source, methodName, parentClass, EntityMethod)
}

func buildTSFunctionEntity(path string, node *sitter.Node, source []byte, name, parentClass string, kind EntityKind) (Entity, []Relationship) {
	qualifiedName := name
	if parentClass != "" {
		qualifiedName = parentClass + "." + name
		kind = EntityMethod
	}

	signature := "()"
	if paramsNode := node.ChildByFieldName("parameters"); paramsNode != nil {
		signature = nodeText(paramsNode, source)
	}

	var relationships []Relationship
	if body := node.ChildByFieldName("body"); body != nil {
		relationships = extractTSCalls(path, body, source, qualifiedName)
	}

	entity := Entity{
		Kind:          kind,
		Name:          name,
		QualifiedName: qualifiedName,
		ParentName:    parentClass,
		StartLine:     int(node.StartPoint().Row) + 1,
		EndLine:       int(node.EndPoint().Row) + 1,
		Signature:     signature,
		Docstring:     tsDocstring(node, source),
		Language:      "typescript",
	}
	return entity, relationships
}

func extractTSCalls(path string, body *sitter.Node, source []byte, callerQualifiedName string) []Relationship {
	var out []Relationship
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n.Type() == "call_expression" {
			if funcNode := n.ChildByFieldName("function"); funcNode != nil {
				called := tsIdentifierText(funcNode, source)
				out = append(out, Relationship{
					Kind:              RelCalls,
					FromQualifiedName: callerQualifiedName,
					ToNameHint:        called,
					Location:          locationOf(path, funcNode),
				})
			}
		}
		if n.Type() == "new_expression" {
			if ctor := n.ChildByFieldName("constructor"); ctor != nil {
				out = append(out, Relationship{
					Kind:              RelInstantiates,
					FromQualifiedName: callerQualifiedName,
					ToNameHint:        tsIdentifierText(ctor, source),
					Location:          locationOf(path, ctor),
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
