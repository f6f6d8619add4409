package wire

import (
	"Ripple/internal/api"
	"Ripple/internal/api/config"
	"Ripple/internal/api/handler"
	"Ripple/internal/job"
	"Ripple/internal/pkg/cron"
	"Ripple/internal/pkg/mongo"
	"Ripple/internal/pkg/security"
	"Ripple/internal/repository"
	"Ripple/internal/service"

	"github.com/gin-gonic/gin"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router         *gin.Engine
	DB             *gorm.DB
	CronMgr        *cron.Manager
	MessageService service.MessageService
}

func BuildApplication(db *gorm.DB, mongoDB *mongodriver.Database, cfg *config.Config) (*ApplicationContainer, error) {
	userRepo := repository.NewUserRepo(db)
	convRepo := repository.NewConversationRepo(db)
	signalRepo := repository.NewSignalRepo()
	messageRepo := mongo.NewMessageRepo(mongoDB)
	reactionRepo := mongo.NewReactionRepo(mongoDB)

	userService := service.NewUserService(userRepo)
	convService := service.NewConversationService(convRepo, userRepo)
	messageService := service.NewMessageService(
		convRepo, userRepo, messageRepo, reactionRepo,
		service.NewMinioSigner(), service.NewRedisPublisher(),
	)
	reactionService := service.NewReactionService(convRepo, messageRepo, reactionRepo)
	signalService := service.NewSignalService(signalRepo, convRepo, userRepo)

	handlers := &api.HandlersGroup{
		UserHandler:         handler.NewUserHandler(userService),
		ConversationHandler: handler.NewConversationHandler(userService, convService),
		MessageHandler:      handler.NewMessageHandler(userService, messageService),
		ReactionHandler:     handler.NewReactionHandler(userService, reactionService),
		SignalHandler:       handler.NewSignalHandler(userService, signalService),
	}

	validator := security.NewValidator(cfg.Auth)
	router := api.SetupRouter(handlers, validator)

	cronMgr := cron.NewCronManager(job.NewSignalCleanJob())

	return &ApplicationContainer{
		Router:         router,
		DB:             db,
		CronMgr:        cronMgr,
		MessageService: messageService,
	}, nil
}
