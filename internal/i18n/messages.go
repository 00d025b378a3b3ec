package i18n

var messages = map[string]map[string]string{
	LocalePtBR: {
		"error.bad_request":  "Requisição inválida",
		"error.unauthorized": "Não autorizado",
		"error.forbidden":    "Acesso negado",
		"error.internal":     "Erro interno do servidor",
		"error.not_found":    "Recurso não encontrado",

		"error.user_id_invalid":      "userId inválido",
		"error.user_id_type_invalid": "Tipo de userId inválido",
		"error.user_not_found":       "Usuário não encontrado",
		"error.user_disabled":        "Usuário desativado",
		"error.amount_invalid":       "A quantidade deve ser um inteiro positivo",
		"error.insufficient_credits": "Créditos insuficientes",

		"error.coupon_invalid":        "Cupom inválido",
		"error.coupon_not_found":      "Cupom não encontrado",
		"error.coupon_inactive":       "Cupom inativo",
		"error.coupon_expired":        "Cupom expirado",
		"error.coupon_usage_limit":    "Cupom atingiu o limite de usos",
		"error.coupon_code_exists":    "Já existe um cupom com este código",
		"error.coupon_create_failed":  "Erro ao criar cupom",
		"error.coupon_update_failed":  "Erro ao atualizar cupom",
		"error.coupon_active_invalid": "is_active deve ser booleano",
		"error.subtotal_invalid":      "O subtotal deve ser positivo",
		"error.partner_token_invalid": "Token de parceiro inválido",

		"error.customer_document_invalid":   "CPF/CNPJ deve ter 11 ou 14 dígitos",
		"error.customer_phone_invalid":      "Telefone deve ter 10 ou 11 dígitos",
		"error.payment_gateway_unavailable": "Gateway de pagamento indisponível",
		"error.payment_id_required":         "ID do pagamento é obrigatório",
		"error.payment_not_found":           "Pagamento não encontrado",
		"error.payment_not_confirmed":       "Pagamento ainda não confirmado",
		"error.payment_reference_malformed": "Referência de pagamento inválida",
		"error.payment_confirm_failed":      "Erro ao confirmar pagamento",
		"error.webhook_unauthorized":        "Token de webhook inválido",
		"error.webhook_payload_invalid":     "Payload de webhook inválido",

		"error.email_invalid":            "E-mail inválido",
		"error.email_exists":             "E-mail já cadastrado",
		"error.name_invalid":             "Nome inválido",
		"error.password_weak":            "Senha não atende à política",
		"error.password_required":        "Senha é obrigatória",
		"error.password_min_length":      "A senha deve ter pelo menos %d caracteres",
		"error.password_require_upper":   "A senha deve conter letra maiúscula",
		"error.password_require_lower":   "A senha deve conter letra minúscula",
		"error.password_require_number":  "A senha deve conter número",
		"error.password_require_special": "A senha deve conter caractere especial",
		"error.invalid_credentials":      "Credenciais inválidas",
		"error.login_failed":             "Falha no login",
		"error.register_failed":          "Falha no cadastro",
		"error.captcha_required":         "Captcha é obrigatório",
		"error.captcha_invalid":          "Captcha inválido",
		"error.captcha_config_invalid":   "Configuração de captcha inválida",
		"error.captcha_unavailable":      "Captcha desativado",
		"error.captcha_generate_failed":  "Falha ao gerar captcha",
		"error.jwt_secret_missing":       "Segredo JWT não configurado",
		"error.auth_header_missing":      "Cabeçalho Authorization ausente",
		"error.auth_header_invalid":      "Cabeçalho Authorization inválido",
		"error.token_invalid":            "Token inválido ou expirado",
		"error.token_revoked":            "Token revogado",
		"error.rate_limited":             "Muitas requisições, tente novamente em %d segundos",
		"error.rate_limit_unavailable":   "Limite de requisições indisponível",
		"error.login_too_many":           "Muitas tentativas de login, tente novamente em %d segundos",
		"error.credits_grant_failed":     "Erro ao adicionar créditos",
		"error.dashboard_failed":         "Erro ao carregar painel",
		"error.role_invalid":             "Papel inválido",
		"error.admin_not_found":          "Administrador não encontrado",
		"error.authz_unavailable":        "Serviço de autorização indisponível",
		"error.transactions_failed":      "Erro ao listar transações",
		"error.payment_create_failed":    "Erro ao criar pagamento",
		"error.coupon_list_failed":       "Erro ao listar cupons",
		"error.partner_stats_failed":     "Erro ao carregar estatísticas do parceiro",
		"error.credits_operation_failed": "Erro ao processar créditos",
	},
	LocaleEnUS: {
		"error.bad_request":  "Invalid request",
		"error.unauthorized": "Unauthorized",
		"error.forbidden":    "Forbidden",
		"error.internal":     "Internal server error",
		"error.not_found":    "Resource not found",

		"error.user_id_invalid":      "Invalid userId",
		"error.user_id_type_invalid": "Invalid userId type",
		"error.user_not_found":       "User not found",
		"error.user_disabled":        "User disabled",
		"error.amount_invalid":       "Amount must be a positive integer",
		"error.insufficient_credits": "Insufficient credits",

		"error.coupon_invalid":        "Invalid coupon",
		"error.coupon_not_found":      "Coupon not found",
		"error.coupon_inactive":       "Coupon is inactive",
		"error.coupon_expired":        "Coupon has expired",
		"error.coupon_usage_limit":    "Coupon usage limit reached",
		"error.coupon_code_exists":    "A coupon with this code already exists",
		"error.coupon_create_failed":  "Failed to create coupon",
		"error.coupon_update_failed":  "Failed to update coupon",
		"error.coupon_active_invalid": "is_active must be a boolean",
		"error.subtotal_invalid":      "Subtotal must be positive",
		"error.partner_token_invalid": "Invalid partner token",

		"error.customer_document_invalid":   "CPF/CNPJ must have 11 or 14 digits",
		"error.customer_phone_invalid":      "Phone must have 10 or 11 digits",
		"error.payment_gateway_unavailable": "Payment gateway unavailable",
		"error.payment_id_required":         "Payment id is required",
		"error.payment_not_found":           "Payment not found",
		"error.payment_not_confirmed":       "Payment not confirmed yet",
		"error.payment_reference_malformed": "Malformed payment reference",
		"error.payment_confirm_failed":      "Failed to confirm payment",
		"error.webhook_unauthorized":        "Invalid webhook token",
		"error.webhook_payload_invalid":     "Invalid webhook payload",

		"error.email_invalid":            "Invalid email",
		"error.email_exists":             "Email already registered",
		"error.name_invalid":             "Invalid name",
		"error.password_weak":            "Password does not satisfy policy",
		"error.password_required":        "Password is required",
		"error.password_min_length":      "Password must be at least %d characters",
		"error.password_require_upper":   "Password must contain an uppercase letter",
		"error.password_require_lower":   "Password must contain a lowercase letter",
		"error.password_require_number":  "Password must contain a number",
		"error.password_require_special": "Password must contain a special character",
		"error.invalid_credentials":      "Invalid credentials",
		"error.login_failed":             "Login failed",
		"error.register_failed":          "Registration failed",
		"error.captcha_required":         "Captcha is required",
		"error.captcha_invalid":          "Invalid captcha",
		"error.captcha_config_invalid":   "Invalid captcha configuration",
		"error.captcha_unavailable":      "Captcha disabled",
		"error.captcha_generate_failed":  "Failed to generate captcha",
		"error.jwt_secret_missing":       "JWT secret not configured",
		"error.auth_header_missing":      "Missing Authorization header",
		"error.auth_header_invalid":      "Invalid Authorization header",
		"error.token_invalid":            "Invalid or expired token",
		"error.token_revoked":            "Token revoked",
		"error.rate_limited":             "Too many requests, try again in %d seconds",
		"error.rate_limit_unavailable":   "Rate limiting unavailable",
		"error.login_too_many":           "Too many login attempts, try again in %d seconds",
		"error.credits_grant_failed":     "Failed to add credits",
		"error.dashboard_failed":         "Failed to load dashboard",
		"error.role_invalid":             "Invalid role",
		"error.admin_not_found":          "Admin not found",
		"error.authz_unavailable":        "Authorization service unavailable",
		"error.transactions_failed":      "Failed to list transactions",
		"error.payment_create_failed":    "Failed to create payment",
		"error.coupon_list_failed":       "Failed to list coupons",
		"error.partner_stats_failed":     "Failed to load partner stats",
		"error.credits_operation_failed": "Failed to process credits",
	},
}
