// Package testutil содержит фикстуры для тестов.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// PlaidSpec урезанная спецификация Plaid с известными дефектами:
// UserName объявлен с неверным type, запросы несут client_id и secret,
// AllOf повторяет поля именованной схемы, externalDocs.url относительные.
const PlaidSpec = `openapi: 3.0.0
info:
  title: The Plaid API
  version: 2020-09-14_1.0.0
paths:
  /link/token/create:
    post:
      operationId: linkTokenCreate
      externalDocs:
        url: /api/tokens/#linktokencreate
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/LinkTokenCreateRequest'
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/LinkTokenCreateResponse'
  /accounts/get:
    post:
      operationId: accountsGet
      externalDocs:
        url: /api/accounts/#accountsget
      responses:
        '200':
          description: OK
  /institutions/get:
    post:
      operationId: institutionsGet
      responses:
        '200':
          description: OK
components:
  schemas:
    LinkTokenCreateRequest:
      type: object
      properties:
        client_id:
          type: string
        secret:
          type: string
        client_name:
          type: string
        language:
          type: string
        user:
          $ref: '#/components/schemas/UserName'
    LinkTokenCreateResponse:
      type: object
      properties:
        link_token:
          type: string
        expiration:
          type: string
        request_id:
          type: string
    Base:
      type: object
      properties:
        foo:
          type: string
    Bar:
      allOf:
        - $ref: '#/components/schemas/Base'
        - type: object
          properties:
            foo:
              type: string
              description: restated field
    UserName:
      type: 12
      properties:
        given_name:
          type: string
        family_name:
          type: string
`

// WriteFile записывает содержимое во временный каталог теста и возвращает путь
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}
