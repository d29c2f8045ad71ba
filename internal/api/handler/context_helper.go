package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/nanpipat/hr-rebase/pkg/jwt"
	"github.com/nanpipat/hr-rebase/pkg/response"
)

// MustGetEmployeeID 从 Gin 上下文中安全提取 employee_id。
// 如果 JWT 中间件未正确注入 employee_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetEmployeeID(c *gin.Context) (string, bool) {
	v, exists := c.Get("employee_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetClaims 从 Gin 上下文中安全提取完整 JWT 声明。
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}

// isPrivileged 管理员与 HR 可以代查其他员工的数据
func isPrivileged(role string) bool {
	return role == "admin" || role == "hr"
}

// resolveTargetEmployee 确定查询目标员工：
// 管理员/HR 可通过 employee_id 参数代查，普通员工只能查自己
func resolveTargetEmployee(c *gin.Context, requested string) (string, bool) {
	selfID, ok := MustGetEmployeeID(c)
	if !ok {
		return "", false
	}
	if requested == "" || requested == selfID {
		return selfID, true
	}
	role, ok := MustGetRole(c)
	if !ok {
		return "", false
	}
	if !isPrivileged(role) {
		response.Forbidden(c, 10003, "无权限查询其他员工")
		return "", false
	}
	return requested, true
}
