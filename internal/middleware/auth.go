package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/gem-game/internal/utils"
)

// 上下文键
const contextKeyPlayerID = "playerID"

// AuthMiddleware 玩家身份中间件。
// 身份来源：Bearer JWT或X-Player-Id头。身份是可选的；
// 携带身份时，命令提交方必须与命令的actorId一致，由处理器校验。
type AuthMiddleware struct {
	jwtManager *utils.JWTManager
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *utils.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
	}
}

// PlayerIdentity 解析玩家身份（不强制要求携带）
func (m *AuthMiddleware) PlayerIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token != "" {
			claims, err := m.jwtManager.ValidateToken(token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{
					"code":    "INVALID_TOKEN",
					"message": "无效的令牌",
					"details": err.Error(),
				})
				c.Abort()
				return
			}
			c.Set(contextKeyPlayerID, claims.PlayerID)
			c.Next()
			return
		}

		// 无令牌时允许以明文头声明身份（开发与内网部署场景）
		if playerID := c.GetHeader("X-Player-Id"); playerID != "" {
			c.Set(contextKeyPlayerID, playerID)
		}

		c.Next()
	}
}

// extractToken 从请求中提取令牌
func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	// 1. 从Authorization Header获取 (Bearer Token)
	bearerToken := c.GetHeader("Authorization")
	if bearerToken != "" {
		parts := strings.Split(bearerToken, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	// 2. 从X-Access-Token Header获取
	if token := c.GetHeader("X-Access-Token"); token != "" {
		return token
	}

	// 3. 从Query参数获取（不推荐用于生产环境）
	if token := c.Query("token"); token != "" {
		return token
	}

	return ""
}

// GetPlayerID 从上下文获取玩家ID
func GetPlayerID(c *gin.Context) (string, bool) {
	if playerID, exists := c.Get(contextKeyPlayerID); exists {
		if id, ok := playerID.(string); ok && id != "" {
			return id, true
		}
	}
	return "", false
}

// ActorAllowed 校验上下文身份是否允许以actorID提交命令。
// 未携带身份时放行，由上层根据部署策略决定是否强制。
func ActorAllowed(c *gin.Context, actorID string) bool {
	playerID, ok := GetPlayerID(c)
	if !ok {
		return true
	}
	return playerID == actorID
}
