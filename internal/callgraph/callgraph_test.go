package callgraph

import (
	"testing"

	"github.com/applycrypto/engine/internal/javaast"
	"github.com/applycrypto/engine/internal/model"
)

const controllerSrc = `package com.example.web;

import org.springframework.web.bind.annotation.GetMapping;
import org.springframework.web.bind.annotation.RestController;
import org.springframework.web.bind.annotation.RequestMapping;

@RestController
@RequestMapping("/api/users")
public class UserController {
    private final IUserSvc userSvc;

    @GetMapping("/{id}")
    public User getUser(Long id) {
        return this.userSvc.findById(id);
    }
}
`

const svcInterfaceSrc = `package com.example.service;

public interface IUserSvc {
    User findById(Long id);
}
`

const svcImplSrc = `package com.example.service;

public class UserSvcImpl implements IUserSvc {
    private final UserDao userDao;

    public User findById(Long id) {
        return userDao.selectById(id);
    }
}
`

const daoSrc = `package com.example.dao;

public class UserDao {
    public User selectById(Long id) {
        return null;
    }
}
`

func parseAll(t *testing.T, sources map[string]string) []*model.FileAst {
	t.Helper()
	p := javaast.New()
	var asts []*model.FileAst
	for path, src := range sources {
		ast := p.Parse(path, []byte(src))
		if ast.Quality != model.ParseQualityParsed {
			t.Fatalf("expected %s to parse cleanly, got %s: %s", path, ast.Quality, ast.Error)
		}
		asts = append(asts, ast)
	}
	return asts
}

func TestBuildResolvesInterfaceCallThroughImplPairing(t *testing.T) {
	asts := parseAll(t, map[string]string{
		"UserController.java": controllerSrc,
		"IUserSvc.java":        svcInterfaceSrc,
		"UserSvcImpl.java":     svcImplSrc,
		"UserDao.java":         daoSrc,
	})

	b := NewBuilder(asts, "spring_mvc")
	g := b.Build()

	var sawImplEdge bool
	for _, r := range g.Relations {
		if r.Caller == "UserController.getUser" && r.Callee == "UserSvcImpl.findById" && r.Resolved {
			sawImplEdge = true
		}
	}
	if !sawImplEdge {
		t.Fatalf("expected interface call resolved to Impl body, got relations: %+v", g.Relations)
	}
}

func TestBuildDetectsSpringMvcEndpoint(t *testing.T) {
	asts := parseAll(t, map[string]string{
		"UserController.java": controllerSrc,
		"IUserSvc.java":        svcInterfaceSrc,
		"UserSvcImpl.java":     svcImplSrc,
		"UserDao.java":         daoSrc,
	})

	b := NewBuilder(asts, "spring_mvc")
	g := b.Build()

	if len(g.Endpoints) != 1 {
		t.Fatalf("expected 1 endpoint, got %+v", g.Endpoints)
	}
	ep := g.Endpoints[0]
	if ep.Path != "/api/users/{id}" {
		t.Errorf("expected joined route /api/users/{id}, got %q", ep.Path)
	}
	if ep.HTTPMethod != model.MethodGet {
		t.Errorf("expected GET, got %s", ep.HTTPMethod)
	}
}

func TestCallStacksToReachesDaoThroughServiceImpl(t *testing.T) {
	asts := parseAll(t, map[string]string{
		"UserController.java": controllerSrc,
		"IUserSvc.java":        svcInterfaceSrc,
		"UserSvcImpl.java":     svcImplSrc,
		"UserDao.java":         daoSrc,
	})

	b := NewBuilder(asts, "spring_mvc")
	g := b.Build()

	stacks := g.CallStacksTo("UserDao.selectById", 10)
	if len(stacks) != 1 {
		t.Fatalf("expected 1 call stack reaching UserDao.selectById, got %+v", stacks)
	}
	want := []string{"UserController.getUser", "UserSvcImpl.findById", "UserDao.selectById"}
	got := stacks[0]
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("at %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLayerTaggerClassifiesBySuffix(t *testing.T) {
	tagger := DefaultLayerTagger()

	cases := []struct {
		name string
		want model.Layer
	}{
		{"UserController", model.LayerController},
		{"UserSvcImpl", model.LayerServiceImpl},
		{"UserDao", model.LayerRepository},
		{"UserDTO", model.LayerValueObject},
		{"SomethingRandom", model.LayerUnknown},
	}
	for _, c := range cases {
		layer := tagger.Tag(&model.ClassInfo{Name: c.name})
		if layer != c.want {
			t.Errorf("%s: got %s, want %s", c.name, layer, c.want)
		}
	}
}

func TestDetectCyclesFindsSelfLoop(t *testing.T) {
	relations := []model.CallRelation{
		{Caller: "A.recurse", Callee: "A.recurse", Resolved: true},
	}
	cycles := detectCycles(relations)
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle for self-loop, got %+v", cycles)
	}
}

func TestDetectCyclesFindsMutualRecursion(t *testing.T) {
	relations := []model.CallRelation{
		{Caller: "A.m", Callee: "B.m", Resolved: true},
		{Caller: "B.m", Callee: "A.m", Resolved: true},
	}
	cycles := detectCycles(relations)
	if len(cycles) != 1 || len(cycles[0]) != 2 {
		t.Fatalf("expected one 2-node SCC, got %+v", cycles)
	}
}

func TestUnresolvedCallSiteRetainsSentinelQualifier(t *testing.T) {
	asts := parseAll(t, map[string]string{
		"Orphan.java": `package com.example;
public class Orphan {
    public void run() {
        somethingUnknown.doStuff();
    }
}`,
	})

	b := NewBuilder(asts, "spring_mvc")
	g := b.Build()

	if len(g.Relations) != 1 {
		t.Fatalf("expected 1 relation, got %+v", g.Relations)
	}
	if g.Relations[0].Resolved {
		t.Fatalf("expected unresolved relation, got %+v", g.Relations[0])
	}
	if want := unresolvedQualifier + ":somethingUnknown.doStuff"; g.Relations[0].Callee != want {
		t.Fatalf("expected callee %q, got %q", want, g.Relations[0].Callee)
	}
}
