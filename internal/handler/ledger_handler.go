package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/blues/lms/internal/logic"
	"github.com/blues/lms/internal/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LedgerHandler 资金与分级审计查询处理器
type LedgerHandler struct {
	db          *gorm.DB
	ledgerLogic *logic.LedgerLogic
	tierLogic   *logic.TierLogic
}

// NewLedgerHandler 创建审计查询处理器
func NewLedgerHandler(db *gorm.DB) *LedgerHandler {
	return &LedgerHandler{
		db:          db,
		ledgerLogic: logic.NewLedgerLogic(db),
		tierLogic:   logic.NewTierLogic(db),
	}
}

// GetSellerBalance 获取卖家资金快照
func (h *LedgerHandler) GetSellerBalance(c *gin.Context) {
	sellerId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid seller id")
		return
	}

	var snapshot model.BalanceSnapshotModel
	if err := h.db.Where("seller_id = ?", sellerId).First(&snapshot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ErrorResponse(c, http.StatusNotFound, "balance snapshot not found")
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", snapshot)
}

// GetSellerLedger 分页获取卖家流水
func (h *LedgerHandler) GetSellerLedger(c *gin.Context) {
	sellerId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid seller id")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	entries, total, err := h.ledgerLogic.GetSellerEntries(sellerId, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": entries,
		"pagination": gin.H{
			"page":       page,
			"page_size":  pageSize,
			"total":      total,
			"total_page": (total + int64(pageSize) - 1) / int64(pageSize),
		},
	})
}

// GetSellerEvaluations 分页获取卖家分级评估记录
func (h *LedgerHandler) GetSellerEvaluations(c *gin.Context) {
	sellerId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid seller id")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	records, total, err := h.tierLogic.GetSellerEvaluations(sellerId, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": records,
		"pagination": gin.H{
			"page":       page,
			"page_size":  pageSize,
			"total":      total,
			"total_page": (total + int64(pageSize) - 1) / int64(pageSize),
		},
	})
}
