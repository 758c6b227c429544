package javaast

import "testing"

func TestFallbackParseExtractsClassAndMethodNames(t *testing.T) {
	src := `package com.example.service;

import com.example.model.User;

public class UserService {
	private String name;

	public User findById(Long id) {
		return null;
	}
}
`
	ast := fallbackParse("UserService.java", []byte(src), "forced for test")

	if ast.Quality != "degraded" {
		t.Fatalf("expected degraded quality, got %s", ast.Quality)
	}
	if ast.Package != "com.example.service" {
		t.Errorf("expected package extracted, got %q", ast.Package)
	}
	if len(ast.Classes) != 1 || ast.Classes[0].Name != "UserService" {
		t.Fatalf("expected one class UserService, got %+v", ast.Classes)
	}
	found := false
	for _, m := range ast.Classes[0].Methods {
		if m.Name == "findById" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected findById method recovered, got %+v", ast.Classes[0].Methods)
	}
}
