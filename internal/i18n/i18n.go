// Package i18n provides the pt/en message catalog for user-facing API
// messages. Portuguese is the product's default language.
package i18n

import "strings"

const defaultLang = "pt"

var translations = map[string]map[string]string{
	"pt": {
		"invalid_credentials":  "E-mail ou senha inválidos",
		"user_exists":          "Já existe uma conta com este e-mail",
		"user_not_found":       "Usuário não encontrado",
		"profile_not_found":    "Perfil não encontrado",
		"invalid_role":         "Tipo de conta inválido",
		"weak_password":        "A senha deve ter pelo menos 6 caracteres",
		"session_not_found":    "Sessão expirada, faça login novamente",
		"invalid_reset_token":  "O link pode ter expirado, solicite um novo",
		"forbidden":            "Acesso negado",
		"invalid_payload":      "Dados inválidos",
		"reset_email_sent":     "Se o e-mail existir, enviaremos as instruções",
		"password_updated":     "Senha atualizada com sucesso",
		"internal_error":       "Erro interno, tente novamente",
		"missing_auth_header":  "Cabeçalho de autorização ausente",
		"invalid_auth_header":  "Cabeçalho de autorização inválido",
		"invalid_token":        "Token inválido",
	},
	"en": {
		"invalid_credentials":  "Invalid email or password",
		"user_exists":          "An account with this email already exists",
		"user_not_found":       "User not found",
		"profile_not_found":    "Profile not found",
		"invalid_role":         "Invalid account type",
		"weak_password":        "Password must be at least 6 characters",
		"session_not_found":    "Session expired, please sign in again",
		"invalid_reset_token":  "The link may have expired, request a new one",
		"forbidden":            "Access forbidden",
		"invalid_payload":      "Invalid payload",
		"reset_email_sent":     "If the email exists, we will send instructions",
		"password_updated":     "Password updated",
		"internal_error":       "Internal error, please retry",
		"missing_auth_header":  "Missing authorization header",
		"invalid_auth_header":  "Invalid authorization header",
		"invalid_token":        "Invalid token",
	},
}

// DetectLanguage maps an Accept-Language header value to a supported
// language, defaulting to Portuguese.
func DetectLanguage(acceptLanguage string) string {
	s := strings.ToLower(strings.TrimSpace(acceptLanguage))
	if strings.HasPrefix(s, "en") {
		return "en"
	}
	return defaultLang
}

// T translates a message code. Unknown languages fall back to Portuguese;
// unknown codes fall back to the code itself.
func T(lang, code string) string {
	msgs, ok := translations[lang]
	if !ok {
		msgs = translations[defaultLang]
	}
	if msg, ok := msgs[code]; ok {
		return msg
	}
	if msg, ok := translations[defaultLang][code]; ok {
		return msg
	}
	return code
}
