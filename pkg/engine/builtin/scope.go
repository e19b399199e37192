package builtin

import (
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/token"
)

// scope is a lexical scope. Function scopes receive var declarations.
type scope struct {
	parent   *scope
	function bool
	names    map[string]bool
}

func newScope(parent *scope, function bool) *scope {
	return &scope{parent: parent, function: function, names: map[string]bool{}}
}

func (s *scope) declare(name string) {
	s.names[name] = true
}

// functionScope returns the nearest enclosing function scope.
func (s *scope) functionScope() *scope {
	for !s.function && s.parent != nil {
		s = s.parent
	}
	return s
}

func (s *scope) resolves(name string) bool {
	for ; s != nil; s = s.parent {
		if s.names[name] {
			return true
		}
	}
	return false
}

type span struct {
	start int
	end   int
}

// reference is a read or write of a name. Resolution happens after the
// whole program is walked so hoisted declarations are visible.
type reference struct {
	name   string
	span   span
	scope  *scope
	typeof bool
}

// consoleUse is a `console.x` member expression.
type consoleUse struct {
	span  span
	scope *scope
}

// analysis is what the AST rules read from one program.
type analysis struct {
	references []reference
	consoles   []consoleUse
	debuggers  []span
	// statementEnds are end offsets of statements that take a semicolon.
	statementEnds []int
}

// analyze walks prog and records references, statement ends and the nodes
// the AST rules report on.
func analyze(prog *ast.Program, sc *script) *analysis {
	a := &analyzer{result: &analysis{}, sc: sc}
	module := newScope(nil, true)
	for _, name := range sc.imports {
		module.declare(name)
	}
	for _, exp := range sc.exports {
		a.result.references = append(a.result.references, reference{
			name:  exp.name,
			span:  span{exp.start, exp.start + len(exp.name)},
			scope: module,
		})
	}
	a.statements(prog.Body, module)
	a.result.statementEnds = append(a.result.statementEnds, sc.moduleEnds...)
	return a.result
}

type analyzer struct {
	result *analysis
	sc     *script
}

func offset(idx file.Idx) int {
	return int(idx) - 1
}

func (a *analyzer) endsStatement(n ast.Node) {
	if a.sc.declarations[offset(n.Idx0())] {
		return
	}
	a.result.statementEnds = append(a.result.statementEnds, offset(n.Idx1()))
}

func (a *analyzer) reference(id *ast.Identifier, s *scope, typeof bool) {
	name := id.Name.String()
	start := offset(id.Idx)
	a.result.references = append(a.result.references, reference{
		name:   name,
		span:   span{start, start + len(name)},
		scope:  s,
		typeof: typeof,
	})
}

func (a *analyzer) statements(list []ast.Statement, s *scope) {
	for _, st := range list {
		a.statement(st, s)
	}
}

func (a *analyzer) statement(st ast.Statement, s *scope) {
	switch n := st.(type) {
	case *ast.BlockStatement:
		a.statements(n.List, newScope(s, false))
	case *ast.ExpressionStatement:
		a.expression(n.Expression, s)
		a.endsStatement(n)
	case *ast.VariableStatement:
		a.bindings(n.List, s.functionScope(), s)
		a.endsStatement(n)
	case *ast.LexicalDeclaration:
		a.bindings(n.List, s, s)
		a.endsStatement(n)
	case *ast.FunctionDeclaration:
		if n.Function.Name != nil {
			s.declare(n.Function.Name.Name.String())
		}
		a.function(n.Function, s)
	case *ast.ClassDeclaration:
		if n.Class.Name != nil {
			s.declare(n.Class.Name.Name.String())
		}
		a.class(n.Class, s)
	case *ast.ReturnStatement:
		a.expression(n.Argument, s)
		a.endsStatement(n)
	case *ast.ThrowStatement:
		a.expression(n.Argument, s)
		a.endsStatement(n)
	case *ast.BranchStatement:
		a.endsStatement(n)
	case *ast.DebuggerStatement:
		start := offset(n.Debugger)
		a.result.debuggers = append(a.result.debuggers, span{start, start + len("debugger")})
		a.endsStatement(n)
	case *ast.DoWhileStatement:
		a.statement(n.Body, s)
		a.expression(n.Test, s)
		a.endsStatement(n)
	case *ast.WhileStatement:
		a.expression(n.Test, s)
		a.statement(n.Body, s)
	case *ast.IfStatement:
		a.expression(n.Test, s)
		a.statement(n.Consequent, s)
		if n.Alternate != nil {
			a.statement(n.Alternate, s)
		}
	case *ast.ForStatement:
		loop := newScope(s, false)
		switch init := n.Initializer.(type) {
		case *ast.ForLoopInitializerExpression:
			a.expression(init.Expression, loop)
		case *ast.ForLoopInitializerVarDeclList:
			a.bindings(init.List, s.functionScope(), loop)
		case *ast.ForLoopInitializerLexicalDecl:
			a.bindings(init.LexicalDeclaration.List, loop, loop)
		}
		a.expression(n.Test, loop)
		a.expression(n.Update, loop)
		a.statement(n.Body, loop)
	case *ast.ForInStatement:
		a.forInto(n.Into, n.Source, n.Body, s)
	case *ast.ForOfStatement:
		a.forInto(n.Into, n.Source, n.Body, s)
	case *ast.LabelledStatement:
		a.statement(n.Statement, s)
	case *ast.SwitchStatement:
		a.expression(n.Discriminant, s)
		body := newScope(s, false)
		for _, c := range n.Body {
			a.expression(c.Test, body)
			a.statements(c.Consequent, body)
		}
	case *ast.TryStatement:
		a.statement(n.Body, s)
		if n.Catch != nil {
			cs := newScope(s, false)
			if n.Catch.Parameter != nil {
				a.pattern(n.Catch.Parameter, cs, cs)
			}
			a.statement(n.Catch.Body, cs)
		}
		if n.Finally != nil {
			a.statement(n.Finally, s)
		}
	case *ast.WithStatement:
		a.expression(n.Object, s)
		a.statement(n.Body, s)
	}
}

func (a *analyzer) forInto(into ast.ForInto, source ast.Expression, body ast.Statement, s *scope) {
	loop := newScope(s, false)
	switch n := into.(type) {
	case *ast.ForIntoVar:
		a.pattern(n.Binding.Target, s.functionScope(), loop)
		a.expression(n.Binding.Initializer, loop)
	case *ast.ForDeclaration:
		a.pattern(n.Target, loop, loop)
	case *ast.ForIntoExpression:
		a.pattern(n.Expression, nil, loop)
	}
	a.expression(source, loop)
	a.statement(body, loop)
}

// bindings declares each binding target in decl and walks initializers in s.
func (a *analyzer) bindings(list []*ast.Binding, decl, s *scope) {
	for _, b := range list {
		a.pattern(b.Target, decl, s)
		a.expression(b.Initializer, s)
	}
}

// pattern declares the names bound by target in decl. With a nil decl the
// target is an assignment and its names are references.
func (a *analyzer) pattern(target ast.Expression, decl, s *scope) {
	switch n := target.(type) {
	case nil:
	case *ast.Identifier:
		if decl != nil {
			decl.declare(n.Name.String())
		} else {
			a.reference(n, s, false)
		}
	case *ast.ArrayPattern:
		for _, el := range n.Elements {
			a.pattern(el, decl, s)
		}
		a.pattern(n.Rest, decl, s)
	case *ast.ObjectPattern:
		for _, p := range n.Properties {
			switch p := p.(type) {
			case *ast.PropertyShort:
				a.pattern(&p.Name, decl, s)
				a.expression(p.Initializer, s)
			case *ast.PropertyKeyed:
				if p.Computed {
					a.expression(p.Key, s)
				}
				a.pattern(p.Value, decl, s)
			case *ast.SpreadElement:
				a.pattern(p.Expression, decl, s)
			}
		}
		a.pattern(n.Rest, decl, s)
	case *ast.AssignExpression:
		a.pattern(n.Left, decl, s)
		a.expression(n.Right, s)
	case *ast.Binding:
		a.pattern(n.Target, decl, s)
		a.expression(n.Initializer, s)
	default:
		// Member expressions assigned through a pattern.
		if decl == nil {
			a.expression(target, s)
		}
	}
}

func (a *analyzer) expression(e ast.Expression, s *scope) {
	switch n := e.(type) {
	case nil:
	case *ast.Identifier:
		a.reference(n, s, false)
	case *ast.ArrayLiteral:
		for _, v := range n.Value {
			a.expression(v, s)
		}
	case *ast.ArrayPattern, *ast.ObjectPattern:
		a.pattern(n, nil, s)
	case *ast.AssignExpression:
		a.pattern(n.Left, nil, s)
		a.expression(n.Right, s)
	case *ast.AwaitExpression:
		a.expression(n.Argument, s)
	case *ast.YieldExpression:
		a.expression(n.Argument, s)
	case *ast.BinaryExpression:
		a.expression(n.Left, s)
		a.expression(n.Right, s)
	case *ast.BracketExpression:
		a.expression(n.Left, s)
		a.expression(n.Member, s)
		a.console(n, n.Left, s)
	case *ast.DotExpression:
		a.expression(n.Left, s)
		a.console(n, n.Left, s)
	case *ast.PrivateDotExpression:
		a.expression(n.Left, s)
	case *ast.CallExpression:
		a.expression(n.Callee, s)
		for _, arg := range n.ArgumentList {
			a.expression(arg, s)
		}
	case *ast.NewExpression:
		a.expression(n.Callee, s)
		for _, arg := range n.ArgumentList {
			a.expression(arg, s)
		}
	case *ast.ConditionalExpression:
		a.expression(n.Test, s)
		a.expression(n.Consequent, s)
		a.expression(n.Alternate, s)
	case *ast.SequenceExpression:
		for _, v := range n.Sequence {
			a.expression(v, s)
		}
	case *ast.TemplateLiteral:
		a.expression(n.Tag, s)
		for _, v := range n.Expressions {
			a.expression(v, s)
		}
	case *ast.UnaryExpression:
		if id, ok := n.Operand.(*ast.Identifier); ok && n.Operator == token.TYPEOF {
			a.reference(id, s, true)
			return
		}
		a.expression(n.Operand, s)
	case *ast.OptionalChain:
		a.expression(n.Expression, s)
	case *ast.Optional:
		a.expression(n.Expression, s)
	case *ast.SpreadElement:
		a.expression(n.Expression, s)
	case *ast.ObjectLiteral:
		for _, p := range n.Value {
			switch p := p.(type) {
			case *ast.PropertyShort:
				a.reference(&p.Name, s, false)
				a.expression(p.Initializer, s)
			case *ast.PropertyKeyed:
				if p.Computed {
					a.expression(p.Key, s)
				}
				a.expression(p.Value, s)
			case *ast.SpreadElement:
				a.expression(p.Expression, s)
			}
		}
	case *ast.FunctionLiteral:
		a.function(n, s)
	case *ast.ArrowFunctionLiteral:
		fs := newScope(s, true)
		a.params(n.ParameterList, fs)
		switch body := n.Body.(type) {
		case *ast.BlockStatement:
			a.statements(body.List, fs)
		case *ast.ExpressionBody:
			a.expression(body.Expression, fs)
		}
	case *ast.ClassLiteral:
		a.class(n, s)
	}
}

func (a *analyzer) console(member ast.Expression, object ast.Expression, s *scope) {
	if id, ok := object.(*ast.Identifier); ok && id.Name == "console" {
		a.result.consoles = append(a.result.consoles, consoleUse{
			span:  span{offset(member.Idx0()), offset(member.Idx1())},
			scope: s,
		})
	}
}

func (a *analyzer) function(fn *ast.FunctionLiteral, s *scope) {
	fs := newScope(s, true)
	fs.declare("arguments")
	if fn.Name != nil {
		fs.declare(fn.Name.Name.String())
	}
	a.params(fn.ParameterList, fs)
	if fn.Body != nil {
		a.statements(fn.Body.List, fs)
	}
}

func (a *analyzer) params(list *ast.ParameterList, fs *scope) {
	if list == nil {
		return
	}
	for _, b := range list.List {
		a.pattern(b.Target, fs, fs)
		a.expression(b.Initializer, fs)
	}
	a.pattern(list.Rest, fs, fs)
}

func (a *analyzer) class(c *ast.ClassLiteral, s *scope) {
	a.expression(c.SuperClass, s)
	cs := newScope(s, false)
	if c.Name != nil {
		cs.declare(c.Name.Name.String())
	}
	for _, el := range c.Body {
		switch el := el.(type) {
		case *ast.MethodDefinition:
			if el.Computed {
				a.expression(el.Key, cs)
			}
			a.function(el.Body, cs)
		case *ast.FieldDefinition:
			if el.Computed {
				a.expression(el.Key, cs)
			}
			a.expression(el.Initializer, newScope(cs, true))
			// A computed key without initializer ends before its `]`.
			if !el.Computed || el.Initializer != nil {
				a.endsStatement(el)
			}
		case *ast.ClassStaticBlock:
			a.statements(el.Block.List, newScope(cs, true))
		}
	}
}
