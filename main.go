package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bcaldwell/bankreport/pkg/bankreport"
	"github.com/bcaldwell/bankreport/pkg/config"
	"github.com/robfig/cron"
	"k8s.io/klog"
)

type Runner interface {
	Run() error
}

var runner Runner

func main() {
	klog.InitFlags(nil)

	singleRun := flag.Bool("single-run", false, "run export once (disable cron)")
	configFile := flag.String("config", "./config.yml", "configuration file")
	secretsFile := flag.String("secrets", "./secrets.ejson", "secrets file")
	source := flag.String("source", "", "transactions file, overrides report.source")
	target := flag.String("target", "", "reporting currency, overrides currency.target")
	help := flag.Bool("help", false, "show command help")

	flag.Parse()

	if *help {
		fmt.Println("bank transactions report")
		fmt.Println("bankreport [options] report|descriptions|categories|export")
		flag.PrintDefaults()
		return
	}

	err := config.ReadConfig(config.DefaultConfigEnvVar, *configFile, *secretsFile)
	if err != nil {
		klog.Errorf("Failed to read config: %s", err)
		os.Exit(1)
	}

	if *source != "" {
		config.CurrentReportConfig().Source = *source
	}

	if *target != "" {
		config.CurrentCurrencyConfig().Target = *target
	}

	if flag.NArg() == 0 {
		fmt.Println("No task passed in")
		return
	}

	scheduled := false

	switch flag.Arg(0) {
	case "report":
		runner = bankreport.ReportRunner{}
	case "descriptions":
		runner = bankreport.DescriptionsRunner{}
	case "categories":
		runner = bankreport.CategoriesRunner{}
	case "export":
		runner = bankreport.ExportRunner{}
		scheduled = true
	default:
		fmt.Printf("Unknown task %q\n", flag.Arg(0))
		return
	}

	if !run() && (*singleRun || !scheduled) {
		os.Exit(1)
	}

	if *singleRun || !scheduled {
		return
	}

	c := cron.New()
	err = c.AddFunc(config.CurrentConfig().UpdateFrequency, func() { run() })
	if err != nil {
		klog.Errorf("Invalid update frequency %q: %s", config.CurrentConfig().UpdateFrequency, err)
		os.Exit(1)
	}

	c.Start()

	select {}
}

func run() bool {
	klog.Infof("Starting run at %s", time.Now().Format(time.RFC850))
	err := runner.Run()
	if err != nil {
		klog.Error(err)
		return false
	}
	return true
}
