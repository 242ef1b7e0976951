package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/arnavj/consultmatch/internal/docload"
	"github.com/arnavj/consultmatch/internal/logger"
	"github.com/arnavj/consultmatch/internal/pipeline"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var prompt = promptui.Select{
	Label: "Found profiles to compare. Send notifications when done?",
	Items: []string{PromptYes, PromptNo},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a one-shot comparison for a JD file against a folder of profiles",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("jd", "", "path to the job description text file (required)")
	runCmd.Flags().String("profiles", "", "path to the folder with consultant profile text files (required)")
	runCmd.Flags().String("ar-email", "", "AR requestor email address (required)")
	runCmd.Flags().String("recruiter-email", "", "recruiter email address (required)")
	runCmd.Flags().String("job-id", "", "job identifier stored with the comparison session")
	runCmd.Flags().String("created-by", "", "creator identifier stored with the comparison session")
	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before sending notifications")

	_ = runCmd.MarkFlagRequired("jd")
	_ = runCmd.MarkFlagRequired("profiles")
	_ = runCmd.MarkFlagRequired("ar-email")
	_ = runCmd.MarkFlagRequired("recruiter-email")
}

// run is the one-shot command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	logger.Info("starting consultmatch", zap.String("version", version))

	jdPath, _ := cmd.Flags().GetString("jd")
	jdContent, err := docload.LoadFile(jdPath)
	if err != nil {
		logger.Fatal("loading job description", zap.Error(err))
	}

	jdTitle := docload.ParseJDTitle(jdContent)
	logger.Info("loaded job description", zap.String("jd_title", jdTitle))

	profilesDir, _ := cmd.Flags().GetString("profiles")
	profiles, err := docload.LoadFolder(profilesDir, logger)
	if err != nil {
		logger.Fatal("loading consultant profiles", zap.Error(err))
	}

	if len(profiles) == 0 {
		logger.Info("exiting", zap.String("reason", "no profiles found in folder"))
		return
	}

	logger.Info("loaded consultant profiles", zap.Int("count", len(profiles)))

	if autoApprove, _ := cmd.Flags().GetBool("auto-approve"); !autoApprove {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if action != PromptYes {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	st, err := newStore(ctx, config.MongoDB, logger)
	if err != nil {
		logger.Fatal("connecting to document store", zap.Error(err))
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			logger.Warn("closing document store", zap.Error(err))
		}
	}()

	pipe, err := newPipeline(ctx, config, st, logger)
	if err != nil {
		logger.Fatal("building pipeline", zap.Error(err))
	}

	arEmail, _ := cmd.Flags().GetString("ar-email")
	recruiterEmail, _ := cmd.Flags().GetString("recruiter-email")
	jobID, _ := cmd.Flags().GetString("job-id")
	createdBy, _ := cmd.Flags().GetString("created-by")

	result, err := pipe.Run(ctx, &pipeline.Request{
		JobID:            jobID,
		JDTitle:          jdTitle,
		JDContent:        jdContent,
		Profiles:         profiles,
		ARRequestorEmail: arEmail,
		RecruiterEmail:   recruiterEmail,
		CreatedBy:        createdBy,
	})
	if err != nil {
		if result != nil {
			reportResult(logger, result)
		}
		logger.Fatal("pipeline run failed", zap.Error(err))
	}

	reportResult(logger, result)
}

func reportResult(logger *zap.Logger, result *pipeline.Result) {
	logger.Info("pipeline finished",
		zap.String("status", string(result.Status)),
		zap.String("route", string(result.Route)),
		zap.String("session_id", result.SessionID),
	)

	for _, match := range result.TopMatches {
		logger.Info("top match",
			zap.Int("rank", match.Rank),
			zap.String("consultant", match.ProfileName),
			zap.String("applicant", match.ApplicantName),
			zap.String("score", fmt.Sprintf("%.2f", match.SimilarityScore)),
		)
	}

	for _, delivery := range result.Deliveries {
		if delivery.Sent {
			logger.Info("notification delivered",
				zap.String("recipient", string(delivery.Recipient)),
				zap.String("address", delivery.Address),
			)
			continue
		}
		logger.Warn("notification failed",
			zap.String("recipient", string(delivery.Recipient)),
			zap.String("address", delivery.Address),
			zap.String("error", delivery.Error),
		)
	}

	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}
}
