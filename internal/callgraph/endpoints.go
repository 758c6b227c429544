package callgraph

import (
	"strings"

	"github.com/applycrypto/engine/internal/model"
)

// EndpointStrategy detects web entry points for one framework. Only
// Spring MVC is implemented; other frameworks are declared as a plug-in
// shape per spec §4.6 ("out of scope for this spec beyond the plug-in
// shape").
type EndpointStrategy interface {
	DetectEndpoints(classes []*model.ClassInfo) []model.Endpoint
}

// NewEndpointStrategy returns the strategy for frameworkType, defaulting
// to Spring MVC.
func NewEndpointStrategy(frameworkType string) EndpointStrategy {
	switch frameworkType {
	case "anyframe":
		return &AnyframeEndpointStrategy{}
	default:
		return &SpringMVCEndpointStrategy{}
	}
}

// SpringMVCEndpointStrategy detects @Controller/@RestController classes
// and their @RequestMapping-family methods.
type SpringMVCEndpointStrategy struct{}

var mappingAnnotationMethods = map[string]model.HTTPMethod{
	"GetMapping":    model.MethodGet,
	"PostMapping":   model.MethodPost,
	"PutMapping":    model.MethodPut,
	"DeleteMapping": model.MethodDelete,
	"PatchMapping":  model.MethodPatch,
}

func (s *SpringMVCEndpointStrategy) DetectEndpoints(classes []*model.ClassInfo) []model.Endpoint {
	var endpoints []model.Endpoint
	for _, c := range classes {
		collectSpringEndpoints(c, &endpoints)
	}
	return endpoints
}

func collectSpringEndpoints(c *model.ClassInfo, endpoints *[]model.Endpoint) {
	if isSpringController(c) {
		classRoute := classLevelRoute(c)
		for _, m := range c.Methods {
			if ep, ok := methodEndpoint(c, m, classRoute); ok {
				*endpoints = append(*endpoints, ep)
			}
		}
	}
	for _, inner := range c.InnerClasses {
		collectSpringEndpoints(inner, endpoints)
	}
}

func isSpringController(c *model.ClassInfo) bool {
	return model.HasAnnotation(c.Annotations, "Controller") || model.HasAnnotation(c.Annotations, "RestController")
}

func classLevelRoute(c *model.ClassInfo) string {
	if anno := model.GetAnnotation(c.Annotations, "RequestMapping"); anno != nil {
		return routeValue(anno)
	}
	return ""
}

func methodEndpoint(c *model.ClassInfo, m model.MethodInfo, classRoute string) (model.Endpoint, bool) {
	for annoName, httpMethod := range mappingAnnotationMethods {
		if anno := model.GetAnnotation(m.Annotations, annoName); anno != nil {
			return buildEndpoint(c, m, classRoute, routeValue(anno), httpMethod), true
		}
	}

	if anno := model.GetAnnotation(m.Annotations, "RequestMapping"); anno != nil {
		httpMethod := model.MethodGet
		if v, ok := anno.Attributes["method"]; ok {
			httpMethod = normalizeHTTPMethod(v)
		}
		return buildEndpoint(c, m, classRoute, routeValue(anno), httpMethod), true
	}

	return model.Endpoint{}, false
}

func buildEndpoint(c *model.ClassInfo, m model.MethodInfo, classRoute, methodRoute string, httpMethod model.HTTPMethod) model.Endpoint {
	return model.Endpoint{
		Path:            joinRoutes(classRoute, methodRoute),
		HTTPMethod:      httpMethod,
		MethodSignature: m.QualifiedName(),
		ClassName:       c.Name,
		MethodName:      m.Name,
		FilePath:        c.FilePath,
	}
}

func routeValue(anno *model.Annotation) string {
	if anno.Value != "" {
		return anno.Value
	}
	if v, ok := anno.Attributes["value"]; ok {
		return v
	}
	if v, ok := anno.Attributes["path"]; ok {
		return v
	}
	return ""
}

func normalizeHTTPMethod(raw string) model.HTTPMethod {
	upper := strings.ToUpper(strings.TrimPrefix(raw, "RequestMethod."))
	switch {
	case strings.Contains(upper, "POST"):
		return model.MethodPost
	case strings.Contains(upper, "PUT"):
		return model.MethodPut
	case strings.Contains(upper, "DELETE"):
		return model.MethodDelete
	case strings.Contains(upper, "PATCH"):
		return model.MethodPatch
	default:
		return model.MethodGet
	}
}

// joinRoutes normalizes class-route ∪ method-route per spec §4.6, with an
// empty class-route defaulting to "/".
func joinRoutes(classRoute, methodRoute string) string {
	if classRoute == "" {
		classRoute = "/"
	}
	joined := strings.TrimSuffix(classRoute, "/") + "/" + strings.TrimPrefix(methodRoute, "/")
	joined = strings.ReplaceAll(joined, "//", "/")
	if joined == "" {
		return "/"
	}
	if !strings.HasPrefix(joined, "/") {
		joined = "/" + joined
	}
	if len(joined) > 1 {
		joined = strings.TrimSuffix(joined, "/")
	}
	return joined
}

// AnyframeEndpointStrategy is declared to satisfy the plug-in shape named
// in spec §4.6; Anyframe's XML-declared action mappings are out of scope
// for this implementation.
type AnyframeEndpointStrategy struct{}

func (s *AnyframeEndpointStrategy) DetectEndpoints(classes []*model.ClassInfo) []model.Endpoint {
	return nil
}
