// internal/view/uahelpers.go
//
// User-Agent-related template helpers.  They read the *RequestInfo that
// the requestinfo middleware attaches to each request and tolerate nil, so
// templates rendered outside a request (tests, ws pushes) still execute.
package view

import (
	"html/template"

	"github.com/yanizio/cadastro/internal/requestinfo"
)

// uaFuncMap returns helpers keyed off *requestinfo.RequestInfo.
func uaFuncMap() template.FuncMap {
	return template.FuncMap{
		"browser": func(i *requestinfo.RequestInfo) string {
			if i == nil {
				return ""
			}
			return i.UA.Browser
		},
		"device": func(i *requestinfo.RequestInfo) string {
			if i == nil || i.UA.Device == "" {
				return "Other"
			}
			return i.UA.Device
		},
		"isBot": func(i *requestinfo.RequestInfo) bool { return i != nil && i.UA.IsBot },
		"lang": func(i *requestinfo.RequestInfo) string {
			if i == nil || i.PrimaryLang == "" {
				return "pt-BR"
			}
			return i.PrimaryLang
		},
	}
}
