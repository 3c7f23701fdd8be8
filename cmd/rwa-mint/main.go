package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"rwa-mint/internal/app"
	"rwa-mint/internal/blockchain"
	"rwa-mint/internal/config"
	"rwa-mint/internal/keymanager"
	"rwa-mint/internal/legal"
	"rwa-mint/internal/pinning"
	"rwa-mint/internal/ports/http"
	"rwa-mint/internal/ports/http/middleware/auth"
	"rwa-mint/internal/propertydata"
	"rwa-mint/internal/repository/mongodb"
	"rwa-mint/internal/verifier"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configFile := flag.String("config", "", "optional yaml or env file with the settings")
	flag.Parse()

	logger, err := getLogger()
	if err != nil {
		log.Fatalln("setting up the logger failed: ", err)
		return
	}
	defer logger.Sync()

	logger.Info("application started")

	if *configFile != "" {
		if err := config.ReadConfigFile(*configFile); err != nil {
			logger.Fatal("failed to read the config file: " + err.Error())
		}
	}

	repo, err := mongodb.NewConnection(logger, config.GetDbConnectionURI(), config.GetDatabaseName())
	if err != nil {
		logger.Fatal("failed to connect to the database: " + err.Error())
	}
	defer repo.Disconnect()

	pinner := pinning.NewClient(logger, config.GetPinataURL(), config.GetPinataJWT(), config.GetRequestTimeout())
	properties := propertydata.NewClient(logger, config.GetAttomURL(), config.GetAttomAPIKey(), config.GetPropertyCacheTTL(), config.GetRequestTimeout())

	var chain app.Chain
	if config.GetContractAddress() != "" {
		client, closeClient, err := dialChain(logger)
		if err != nil {
			logger.Fatal(err.Error())
		}
		defer closeClient()
		chain = client
	} else {
		logger.Warn("CONTRACT_ADDRESS not set, minting is disabled")
	}

	var proofs app.ProofRequester
	if config.GetVerifierCallbackURL() != "" {
		issuer, err := verifier.NewIssuer(logger, config.GetVerifierCallbackURL(), config.GetVerifierDID(), config.GetVerifierRequestTTL())
		if err != nil {
			logger.Fatal("failed to create the proof issuer: " + err.Error())
		}
		proofs = issuer
	}

	rwa := app.NewApp(logger, repo, pinner, properties, chain, proofs, app.Config{
		LegalDomain: legal.Domain{
			ChainID:           config.GetChainID(),
			VerifyingContract: config.GetLegalVerifyingContract(),
		},
		LegalTerms: config.GetLegalTerms(),
		MintAmount: config.GetMintAmount(),
	})

	var validator *auth.TokenValidator
	if config.GetJwtIssuer() != "" {
		v := auth.NewTokenValidator(logger, auth.JwtTokenParams{
			Issuer:   config.GetJwtIssuer(),
			Audience: config.GetJwtAudience(),
		})
		validator = &v
	}

	ser := http.NewServer(logger, rwa, config.GetPort(), validator, config.GetAllowedOrigins()...)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop

		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := ser.Shutdown(ctx); err != nil {
			logger.Error("failed to shut down the server: " + err.Error())
		}
	}()

	if err := ser.Run(); err != nil {
		logger.Error("failed to run the server: " + err.Error())
	}

	logger.Info("application finished")
}

// dialChain connects the token contract. Without an operator key the client
// can only read and build calldata.
func dialChain(logger *zap.Logger) (*blockchain.Client, func(), error) {
	var transactor *bind.TransactOpts

	if key := config.GetOperatorPrivateKey(); key != "" {
		keys, err := keymanager.NewKeyManager(logger).LoadKeys(key)
		if err != nil {
			return nil, nil, err
		}
		transactor, err = keys.GetTransactor(config.GetChainID())
		if err != nil {
			return nil, nil, err
		}
		logger.Info("operator key loaded", zap.String("address", keys.Address().Hex()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.GetRequestTimeout())
	defer cancel()

	return blockchain.Dial(ctx, logger, config.GetRPCURL(), config.GetContractAddress(), transactor)
}

func getLogger() (*zap.Logger, error) {
	options := []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zap.FatalLevel),
	}

	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	config.Development = true
	config.Level.SetLevel(zap.DebugLevel)

	logger, err := config.Build()
	return logger.WithOptions(options...), err
}
