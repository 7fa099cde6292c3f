package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"globalpatents/config"
	"globalpatents/contract"
	"globalpatents/metrics"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
	"github.com/prometheus/client_golang/prometheus"
)

var logger = flogging.MustGetLogger("globalpatents.main")

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Error loading configuration: " + err.Error())
	}
	if err := flogging.Global.ActivateSpec(cfg.LogSpec); err != nil {
		panic("Error activating log spec '" + cfg.LogSpec + "': " + err.Error())
	}

	rec, err := metrics.NewRecorder(prometheus.DefaultRegisterer)
	if err != nil {
		panic("Error registering metrics: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, prometheus.DefaultGatherer); err != nil {
				logger.Errorf("Metrics server stopped: %v", err)
			}
		}()
	}

	cc, err := contractapi.NewChaincode(contract.NewGlobalPatentsContract(rec))
	if err != nil {
		panic("Error creating GlobalPatentsContract: " + err.Error())
	}
	cc.Info.Title = "globalpatents"
	cc.Info.Version = "1.0.0"

	if !cfg.IsExternalService() {
		if err := cc.Start(); err != nil {
			panic("Error starting chaincode: " + err.Error())
		}
		return
	}

	tlsProps, err := cfg.TLSProperties()
	if err != nil {
		panic("Error loading chaincode TLS material: " + err.Error())
	}
	server := &shim.ChaincodeServer{
		CCID:     cfg.ID,
		Address:  cfg.ServerAddress,
		CC:       cc,
		TLSProps: tlsProps,
	}
	logger.Infof("Starting chaincode service '%s' on %s (TLS disabled: %t)", cfg.ID, cfg.ServerAddress, tlsProps.Disabled)
	if err := server.Start(); err != nil {
		panic("Error starting chaincode service: " + err.Error())
	}
}
