package rewards

import (
	"net/http"

	"github.com/DhavalSuthar-24/huddle/internal/middleware"
	"github.com/DhavalSuthar-24/huddle/pkg/responses"
	"github.com/DhavalSuthar-24/huddle/pkg/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RewardsController struct {
	repo   RewardsRepository
	logger *zap.Logger
}

func NewRewardsController(repo RewardsRepository, logger *zap.Logger) *RewardsController {
	return &RewardsController{repo: repo, logger: logger}
}

// GetCatalog godoc
// @Summary List redeemable rewards
// @Tags Rewards
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=[]Reward}
// @Router /rewards [get]
// @Security BearerAuth
func (rc *RewardsController) GetCatalog(c *gin.Context) {
	responses.SendSuccess(c, http.StatusOK, "Rewards retrieved successfully", Catalog())
}

// GetBalance godoc
// @Summary Get the caller's token balance
// @Tags Rewards
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=BalanceResponse}
// @Router /rewards/balance [get]
// @Security BearerAuth
func (rc *RewardsController) GetBalance(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}
	balance, err := rc.repo.Balance(c.Request.Context(), userID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", BalanceResponse{Balance: balance})
}

// GetHistory godoc
// @Summary List the caller's token ledger, newest first
// @Tags Rewards
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} responses.PaginatedResponse{data=[]TokenTransaction}
// @Router /rewards/history [get]
// @Security BearerAuth
func (rc *RewardsController) GetHistory(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}
	page, pageSize := responses.PageParams(c)
	history, total, err := rc.repo.History(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Token history retrieved successfully", history, total, page, pageSize)
}

// Redeem godoc
// @Summary Redeem a reward
// @Tags Rewards
// @Accept json
// @Produce json
// @Param redeem body RedeemRequest true "Reward to redeem"
// @Success 200 {object} responses.SuccessResponse{data=LedgerResponse}
// @Failure 402 {object} responses.ErrorResponse "Insufficient balance"
// @Failure 404 {object} responses.ErrorResponse "Unknown reward"
// @Router /rewards/redeem [post]
// @Security BearerAuth
func (rc *RewardsController) Redeem(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, err.Error())
		return
	}
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}

	entry, balance, err := rc.repo.Redeem(c.Request.Context(), userID, req.RewardID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	rc.logger.Info("reward redeemed", zap.String("user_id", userID), zap.String("reward_id", req.RewardID), zap.Int("balance", balance))
	responses.SendSuccess(c, http.StatusOK, "Reward redeemed", LedgerResponse{Transaction: *entry, Balance: balance})
}

// Award godoc
// @Summary Award tokens to a user
// @Tags Admin
// @Accept json
// @Produce json
// @Param award body AwardRequest true "Award"
// @Success 200 {object} responses.SuccessResponse{data=LedgerResponse}
// @Failure 404 {object} responses.ErrorResponse "User not found"
// @Router /admin/rewards/award [post]
// @Security BearerAuth
func (rc *RewardsController) Award(c *gin.Context) {
	var req AwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationFailed(c, validator.ParseError(err))
		return
	}
	entry, balance, err := rc.repo.Award(c.Request.Context(), req.UserID, req.Amount, req.Reason, req.EventName)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	rc.logger.Info("tokens awarded", zap.String("user_id", req.UserID), zap.Int("amount", req.Amount))
	responses.SendSuccess(c, http.StatusOK, "Tokens awarded", LedgerResponse{Transaction: *entry, Balance: balance})
}
