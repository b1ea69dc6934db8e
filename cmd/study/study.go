package study

import (
	"github.com/iCardioAI/encephalon-examples/cmd/common"
	"github.com/iCardioAI/encephalon-examples/pkg/client"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type StudyOptions struct {
	UUID   string
	Name   string
	Age    int
	Height float64
	Weight float64
	Sex    string
}

var options = StudyOptions{}

func NewStudyRootCmd() *cobra.Command {
	studyCmd := &cobra.Command{
		Use:     "study [command]",
		Short:   "Manage studies, the containers DICOMs and scans belong to",
		GroupID: "resources",
	}

	studyCmd.AddCommand(NewCreateCmd())
	studyCmd.AddCommand(NewListCmd())
	studyCmd.AddCommand(NewGetCmd())
	studyCmd.AddCommand(NewUpdateCmd())
	studyCmd.AddCommand(NewDeleteCmd())

	return studyCmd
}

func NewCreateCmd() *cobra.Command {
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new study",
		Long:  "Create a new study. Age is the only required patient attribute, height is inches and weight is pounds.",
		Example: `
# Create a study with the minimal patient data
encephalon study create --age 45

# Create a fully described study
encephalon study create --age 45 --name patient-0815 --height 70 --weight 180 --sex F
		`,
		Run: Create,
	}
	createCmd.Flags().IntVarP(&options.Age, "age", "a", 0, "Patient age in years")
	err := createCmd.MarkFlagRequired("age")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking age required")
	}
	createCmd.Flags().StringVarP(&options.Name, "name", "n", "", "Study display name")
	createCmd.Flags().Float64Var(&options.Height, "height", 0, "Patient height in inches")
	createCmd.Flags().Float64Var(&options.Weight, "weight", 0, "Patient weight in pounds")
	createCmd.Flags().StringVar(&options.Sex, "sex", "", "Patient sex (M/F)")

	return createCmd
}

func Create(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	study, _, err := apiClient.CreateStudy(client.StudyRequest{
		Age:    options.Age,
		Name:   options.Name,
		Height: options.Height,
		Weight: options.Weight,
		Sex:    options.Sex,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed creating study")
	}

	log.Info().Str("uuid", study.UUID).Str("name", study.Name).Msg("Study created")
}

func NewListCmd() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all studies",
		Run:   List,
	}
	listCmd.Flags().StringVarP(&options.Name, "name", "n", "", "Only list studies with this name")

	return listCmd
}

func List(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	count := 0
	nextPageUrl := ""
	for {
		studies, next, _, err := apiClient.ListStudies(nextPageUrl, options.Name, "")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed listing studies")
		}

		for _, study := range studies {
			log.Info().Str("uuid", study.UUID).Str("name", study.Name).Int("age", study.Age).Time("createdAt", study.CreatedAt).Msg("Study")
			count = count + 1
		}

		if next == "" {
			break
		}
		nextPageUrl = next
	}

	log.Info().Int("count", count).Msg("Listed all studies")
}

func NewGetCmd() *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show a single study",
		Run:   Get,
	}
	getCmd.Flags().StringVarP(&options.UUID, "uuid", "s", "", "Study UUID")
	err := getCmd.MarkFlagRequired("uuid")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking uuid required")
	}

	return getCmd
}

func Get(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	study, _, err := apiClient.GetStudy(options.UUID)
	if err != nil {
		log.Fatal().Err(err).Str("uuid", options.UUID).Msg("Failed fetching study")
	}

	log.Info().
		Str("uuid", study.UUID).
		Str("name", study.Name).
		Int("age", study.Age).
		Float64("height", study.Height).
		Float64("weight", study.Weight).
		Str("sex", study.Sex).
		Time("createdAt", study.CreatedAt).
		Msg("Study")
}

func NewUpdateCmd() *cobra.Command {
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Update study attributes",
		Long:  "Update study attributes. Only the provided flags are sent, everything else stays unchanged.",
		Run:   Update,
	}
	updateCmd.Flags().StringVarP(&options.UUID, "uuid", "s", "", "Study UUID")
	err := updateCmd.MarkFlagRequired("uuid")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking uuid required")
	}
	updateCmd.Flags().IntVarP(&options.Age, "age", "a", 0, "Patient age in years")
	updateCmd.Flags().StringVarP(&options.Name, "name", "n", "", "Study display name")
	updateCmd.Flags().Float64Var(&options.Height, "height", 0, "Patient height in inches")
	updateCmd.Flags().Float64Var(&options.Weight, "weight", 0, "Patient weight in pounds")
	updateCmd.Flags().StringVar(&options.Sex, "sex", "", "Patient sex (M/F)")

	return updateCmd
}

func Update(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	study, _, err := apiClient.UpdateStudy(options.UUID, client.StudyUpdate{
		Age:    options.Age,
		Name:   options.Name,
		Height: options.Height,
		Weight: options.Weight,
		Sex:    options.Sex,
	})
	if err != nil {
		log.Fatal().Err(err).Str("uuid", options.UUID).Msg("Failed updating study")
	}

	log.Info().Str("uuid", study.UUID).Str("name", study.Name).Msg("Study updated")
}

func NewDeleteCmd() *cobra.Command {
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a study and everything attached to it",
		Run:   Delete,
	}
	deleteCmd.Flags().StringVarP(&options.UUID, "uuid", "s", "", "Study UUID")
	err := deleteCmd.MarkFlagRequired("uuid")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed marking uuid required")
	}

	return deleteCmd
}

func Delete(cmd *cobra.Command, args []string) {
	apiClient := common.BuildClient()

	_, err := apiClient.DeleteStudy(options.UUID)
	if err != nil {
		log.Fatal().Err(err).Str("uuid", options.UUID).Msg("Failed deleting study")
	}

	log.Info().Str("uuid", options.UUID).Msg("Study deleted")
}
