package config

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// ParameterLister is the subset of the SSM client used to load parameters.
type ParameterLister interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// LoadSSMParameters overlays every parameter stored under SSM_PARAMETER_PATH
// onto c. The last path segment of each parameter becomes its key, so
// /yazameet/prod/RESEND_API_KEY is exposed as RESEND_API_KEY.
func LoadSSMParameters(ctx context.Context, c Config) error {
	prefix := GetString(c, "SSM_PARAMETER_PATH", "")
	if prefix == "" {
		return nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(GetString(c, "AWS_REGION", GetString(c, "S3_REGION", "eu-central-1"))))
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	return loadParameters(ctx, ssm.NewFromConfig(awsCfg), prefix, c)
}

func loadParameters(ctx context.Context, client ParameterLister, prefix string, c Config) error {
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(prefix),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	// Values land in c only after every page was read, so a failed listing
	// never leaves a half-applied overlay.
	values := map[string]string{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("list ssm parameters under %s: %w", prefix, err)
		}
		for _, param := range page.Parameters {
			name := strings.TrimSpace(aws.ToString(param.Name))
			if name == "" {
				continue
			}
			values[path.Base(name)] = aws.ToString(param.Value)
		}
	}
	c.Merge(values)

	log.Info().Str("path", prefix).Int("count", len(values)).Msg("Loaded SSM parameters")
	return nil
}
