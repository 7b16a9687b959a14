package api

// RegisterRequest представляет запрос на регистрацию аккаунта.
// Пароль не передается: клиент деривирует auth key (Argon2id от пароля,
// username и соли) и отправляет только его SHA256 хеш
type RegisterRequest struct {
	Username    string `json:"username"`
	AuthKeyHash string `json:"auth_key_hash"` // SHA256 хеш auth key (hex)
	PublicSalt  string `json:"public_salt"`   // соль деривации, base64 (32 байта)
}

// RegisterResponse представляет ответ на успешную регистрацию
type RegisterResponse struct {
	UserID  string `json:"user_id"` // UUID созданного аккаунта
	Message string `json:"message"`
}

// SaltResponse представляет публичную соль аккаунта; клиент запрашивает ее
// перед логином, чтобы воспроизвести деривацию auth key
type SaltResponse struct {
	PublicSalt string `json:"public_salt"` // base64
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Username    string `json:"username"`
	AuthKeyHash string `json:"auth_key_hash"` // SHA256 хеш auth key (hex)
}

// TokenResponse представляет пару токенов после логина или refresh
type TokenResponse struct {
	AccessToken  string `json:"access_token"`  // JWT, уходит в заголовок Authorization
	RefreshToken string `json:"refresh_token"` // одноразовый, хранится у клиента
	ExpiresIn    int64  `json:"expires_in"`    // TTL access token в секундах
}

// ErrorResponse представляет тело ответа с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
