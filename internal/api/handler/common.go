package handler

import (
	"Agora/internal/pkg/consts"
	"Agora/internal/service"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// viewerFromContext 由鉴权中间件注入的身份构造访问者，未登录时为匿名
func viewerFromContext(c *gin.Context) service.Viewer {
	return service.Viewer{
		UserID:  c.GetUint64(consts.UserIDKey),
		IsAdmin: slices.Contains(c.GetStringSlice(consts.RolesKey), consts.RoleAdmin),
	}
}

func parseIDParam(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, service.ErrParamInvalid
	}
	return id, nil
}

type pageQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// bindQuery 绑定查询参数。数字、日期等格式错误统一视为参数错误
func bindQuery(c *gin.Context, obj any) error {
	return asParamError(c.ShouldBindQuery(obj))
}

// bindJSON 绑定请求体。语法错误、类型不匹配与空请求体统一视为参数错误
func bindJSON(c *gin.Context, obj any) error {
	return asParamError(c.ShouldBindJSON(obj))
}

// asParamError 校验错误原样返回，由 response.Error 统一处理，其余绑定错误包装为 ErrParamInvalid
func asParamError(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return err
	}
	return fmt.Errorf("%w: %v", service.ErrParamInvalid, err)
}
