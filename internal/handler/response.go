package handler

import (
	"errors"
	"net/http"

	"live_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ResponseData 统一响应结构体
type ResponseData struct {
	Code int `json:"code"`           // 业务响应状态码
	Msg  any `json:"msg"`            // 提示信息
	Data any `json:"data,omitempty"` // 数据
}

// HandleSuccess 返回成功响应
func HandleSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, ResponseData{
		Code: errorx.CodeSuccess,
		Msg:  "success",
		Data: data,
	})
}

// HandleError 通用错误处理方法
// HTTP 状态码由错误分类决定，存储层故障只记录日志，对外统一返回 "服务繁忙"
//
//	if err := svc.DoSomething(); err != nil {
//	    HandleError(c, err)
//	    return
//	}
func HandleError(c *gin.Context, err error) {
	// 为什么：业务错误（参数、权限、冲突）是预期内的，只有故障值得记 Error
	if errorx.IsFault(err) {
		zap.L().Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
	}
	// 为什么：底层错误可能带 SQL 或地址，对外只给错误码对应的公开信息
	c.JSON(errorx.HTTPStatus(err), ResponseData{
		Code: errorx.GetCode(err),
		Msg:  errorx.Public(err),
	})
}

// HandleParamError 处理参数绑定错误
// validator.ValidationErrors 会被翻译成 字段 -> 提示 的映射
func HandleParamError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && Trans != nil {
		c.JSON(http.StatusBadRequest, ResponseData{
			Code: errorx.ErrInvalidParam.Code,
			Msg:  RemoveTopStruct(validationErrs.Translate(Trans)),
		})
		return
	}

	// 非 validator 错误 (如 JSON 格式错误)
	zap.L().Debug("param bind error", zap.Error(err))
	c.JSON(http.StatusBadRequest, ResponseData{
		Code: errorx.ErrInvalidParam.Code,
		Msg:  errorx.ErrInvalidParam.Msg,
	})
}

// getUserId 读取 JWTAuth 写入的用户 ID
func getUserId(c *gin.Context) string {
	return c.GetString("user_id")
}
