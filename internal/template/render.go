// Package template provides confirmation mail rendering.
//
// 지원하는 변수 형식:
//
//	{{user.email}}, {{user.first_name}},
//	{{verify_url}}, {{expires_at}}
package template

import (
	"html"
	"strings"
	"time"

	"github.com/restapp/backend/internal/model"
)

const ConfirmationSubject = "Confirm your email"

// ConfirmationBody - 기본 확인 메일 HTML 템플릿
const ConfirmationBody = `<!DOCTYPE html>
<html>
<body>
<p>Hi {{user.first_name}},</p>
<p>Please confirm your email address ({{user.email}}) by clicking the link below:</p>
<p><a href="{{verify_url}}">Confirm email</a></p>
<p>The link is valid until {{expires_at}}.</p>
</body>
</html>
`

// ConfirmationData - 템플릿 렌더링에 사용할 데이터
type ConfirmationData struct {
	Email     string
	FirstName string
	VerifyURL string
	ExpiresAt time.Time
}

// ConfirmationDataFromModel - model.ConfirmationEmail에서 ConfirmationData 생성
func ConfirmationDataFromModel(msg model.ConfirmationEmail) ConfirmationData {
	return ConfirmationData{
		Email:     msg.Email,
		FirstName: msg.FirstName,
		VerifyURL: msg.VerifyURL,
		ExpiresAt: msg.ExpiresAt,
	}
}

// RenderBody - 템플릿의 변수를 HTML 이스케이프된 값으로 치환
//
// data가 nil이면 모든 변수는 빈 문자열로 치환됩니다.
func RenderBody(body string, data *ConfirmationData) string {
	if data == nil {
		data = &ConfirmationData{}
	}

	expiresAt := ""
	if !data.ExpiresAt.IsZero() {
		expiresAt = data.ExpiresAt.UTC().Format(time.RFC1123)
	}

	return strings.NewReplacer(
		"{{user.email}}", html.EscapeString(data.Email),
		"{{user.first_name}}", html.EscapeString(data.FirstName),
		"{{verify_url}}", html.EscapeString(data.VerifyURL),
		"{{expires_at}}", expiresAt,
	).Replace(body)
}
