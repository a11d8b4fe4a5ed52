package handler

import (
	"net/http"
	"time"

	"github.com/blues/lms/internal/task"
	"github.com/gin-gonic/gin"
)

// TaskHandler 任务手动触发处理器
// 与调度器共享同一份任务实例，手动触发同样受互斥守卫约束
type TaskHandler struct {
	settlementJob *task.SettlementJob
	tierJob       *task.TierJob
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(settlementJob *task.SettlementJob, tierJob *task.TierJob) *TaskHandler {
	return &TaskHandler{
		settlementJob: settlementJob,
		tierJob:       tierJob,
	}
}

// RunSettlement 手动触发一轮结算
func (h *TaskHandler) RunSettlement(c *gin.Context) {
	result, err := h.settlementJob.RunCycle(c.Request.Context(), time.Now())
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	if result.Skipped {
		SuccessResponse(c, http.StatusOK, "settlement cycle already running, skipped", result)
		return
	}
	SuccessResponse(c, http.StatusOK, "settlement cycle completed", result)
}

// RunTierEvaluation 手动触发一轮分级评估
func (h *TaskHandler) RunTierEvaluation(c *gin.Context) {
	result, err := h.tierJob.RunCycle(c.Request.Context(), time.Now())
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	if result.Skipped {
		SuccessResponse(c, http.StatusOK, "tier evaluation cycle already running, skipped", result)
		return
	}
	SuccessResponse(c, http.StatusOK, "tier evaluation cycle completed", result)
}
