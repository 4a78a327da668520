package common

// AuthorizationHeaderName is the gRPC metadata key (and HTTP header) that
// carries the access token on outbound requests.
const AuthorizationHeaderName = "authorization"

// BearerScheme prefixes the access token inside AuthorizationHeaderName.
const BearerScheme = "Bearer"
