package javaast

import (
	"testing"

	"github.com/applycrypto/engine/internal/model"
)

const sampleController = `package com.example.web;

import com.example.service.UserService;
import org.springframework.web.bind.annotation.GetMapping;
import org.springframework.web.bind.annotation.RestController;

@RestController
public class UserController {
    private final UserService userService;

    @GetMapping("/users/{id}")
    public User getUser(Long id) {
        return this.userService.findById(id);
    }
}
`

func TestParseExtractsPackageImportsAndClass(t *testing.T) {
	p := New()
	ast := p.Parse("UserController.java", []byte(sampleController))

	if ast.Quality != "parsed" {
		t.Fatalf("expected parsed quality, got %s (%s)", ast.Quality, ast.Error)
	}
	if ast.Package != "com.example.web" {
		t.Errorf("expected package com.example.web, got %q", ast.Package)
	}
	if len(ast.Imports) != 3 {
		t.Errorf("expected 3 imports, got %+v", ast.Imports)
	}
	if len(ast.Classes) != 1 {
		t.Fatalf("expected 1 class, got %d", len(ast.Classes))
	}

	class := ast.Classes[0]
	if class.Name != "UserController" {
		t.Errorf("expected class name UserController, got %q", class.Name)
	}
	if !model.HasAnnotation(class.Annotations, "RestController") {
		t.Errorf("expected RestController annotation, got %+v", class.Annotations)
	}
	if len(class.Fields) != 1 || class.Fields[0].Name != "userService" {
		t.Errorf("expected one userService field, got %+v", class.Fields)
	}
}

func TestParseExtractsMethodAndCallSite(t *testing.T) {
	p := New()
	ast := p.Parse("UserController.java", []byte(sampleController))

	class := ast.Classes[0]
	if len(class.Methods) != 1 {
		t.Fatalf("expected 1 method, got %d", len(class.Methods))
	}

	method := class.Methods[0]
	if method.Name != "getUser" {
		t.Errorf("expected method getUser, got %q", method.Name)
	}
	if len(method.Parameters) != 1 || method.Parameters[0].Name != "id" {
		t.Errorf("expected one parameter id, got %+v", method.Parameters)
	}
	if !model.HasAnnotation(method.Annotations, "GetMapping") {
		t.Errorf("expected GetMapping annotation on method, got %+v", method.Annotations)
	}

	if len(method.MethodCalls) != 1 {
		t.Fatalf("expected 1 call site, got %+v", method.MethodCalls)
	}
	call := method.MethodCalls[0]
	if call.MethodName != "findById" {
		t.Errorf("expected call to findById, got %q", call.MethodName)
	}
	if call.Receiver != "this.userService" {
		t.Errorf("expected receiver this.userService, got %q", call.Receiver)
	}
}

func TestParseFallsBackOnGarbageInput(t *testing.T) {
	p := New()
	ast := p.Parse("Broken.java", []byte("this is not { valid java <<< at all"))

	if ast.Quality != "degraded" {
		t.Errorf("expected degraded quality for unparseable input, got %s", ast.Quality)
	}
	if ast.Error == "" {
		t.Errorf("expected an error reason on degraded result")
	}
}

