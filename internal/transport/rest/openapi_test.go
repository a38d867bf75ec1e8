package rest_test

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "REST Transport Suite")
}

var _ = Describe("OpenAPI document", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		loader := openapi3.NewLoader()
		var err error
		doc, err = loader.LoadFromFile(filepath.Join("..", "..", "..", "api", "openapi.yml"))
		Expect(err).NotTo(HaveOccurred())
	})

	It("is a valid OpenAPI 3 document", func() {
		Expect(doc.Validate(context.Background())).To(Succeed())
	})

	It("documents every route the router serves", func() {
		expected := map[string][]string{
			"/auth/signup":                          {http.MethodPost},
			"/auth/signin":                          {http.MethodPost},
			"/auth/refresh":                         {http.MethodPost},
			"/auth/verify-email/{token}":            {http.MethodGet},
			"/auth/forgot-password":                 {http.MethodPost},
			"/auth/reset-password/{token}":          {http.MethodPost},
			"/auth/send-activation-email":           {http.MethodPost},
			"/auth/verify-activation-token/{token}": {http.MethodGet},
			"/auth/activate-account/{token}":        {http.MethodPost},
			"/employees":                            {http.MethodGet, http.MethodPost},
			"/employees/working-status":             {http.MethodGet},
			"/employees/{id}":                       {http.MethodGet, http.MethodPut},
			"/employees/{id}/toggle-status":         {http.MethodPatch},
			"/employees/{id}/add-task/{taskId}":     {http.MethodPatch},
			"/employees/{id}/remove-task/{taskId}":  {http.MethodPatch},
			"/employees/{id}/tasks":                 {http.MethodGet},
			"/employees/{id}/screenshots":           {http.MethodGet},
			"/projects":                             {http.MethodGet, http.MethodPost},
			"/projects/{id}":                        {http.MethodPut, http.MethodDelete},
			"/tasks":                                {http.MethodGet, http.MethodPost},
			"/tasks/{id}":                           {http.MethodPut, http.MethodDelete},
			"/tasks/{id}/assign-employee":           {http.MethodPatch},
			"/tasks/{id}/complete":                  {http.MethodPatch},
			"/tasks/{id}/uncomplete":                {http.MethodPatch},
			"/timelogs":                             {http.MethodPost},
			"/timelogs/{id}/clockout":               {http.MethodPatch},
			"/screenshots":                          {http.MethodPost},
			"/screenshots/capture":                  {http.MethodPost},
			"/screenshots/capture-batch":            {http.MethodPost},
		}

		for path, methods := range expected {
			item := doc.Paths.Find(path)
			Expect(item).NotTo(BeNil(), "path %s is missing from the document", path)
			for _, method := range methods {
				Expect(item.GetOperation(method)).NotTo(BeNil(), "%s %s is undocumented", method, path)
			}
		}
	})

	It("mounts the documented surface under the versioned API prefix", func() {
		Expect(doc.Servers).NotTo(BeEmpty())
		Expect(doc.Servers[0].URL).To(ContainSubstring("/api/v1"))
	})
})
